// Package scoring grades a submitted artifact against an expected one.
// Score is a pure function over two byte slices: deterministic, no I/O,
// and it fails only on malformed input for the declared format.
package scoring

import (
	"bytes"

	"github.com/contestkit/arena/internal/domain"
)

// Result carries the grade together with the match counts it was derived
// from. Matched == Total is the authoritative perfect-score check; the
// float is computed from the counts, never the other way around.
type Result struct {
	Format  domain.Format `json:"format"`
	Matched int           `json:"matched"`
	Total   int           `json:"total"`
	Score   float64       `json:"score"`
}

// Perfect reports whether every comparison unit matched.
func (r Result) Perfect() bool { return r.Matched == r.Total }

// Score grades submitted against expected under the declared format.
// csv is graded row by row, json and txt are all-or-nothing.
func Score(expected []byte, format domain.Format, submitted []byte) (Result, error) {
	switch format {
	case domain.FormatCSV:
		return scoreCSV(expected, submitted)
	case domain.FormatJSON:
		return scoreJSON(expected, submitted)
	case domain.FormatText:
		return scoreText(expected, submitted), nil
	default:
		return Result{}, &domain.UnsupportedFormatError{Format: string(format)}
	}
}

func scoreJSON(expected, submitted []byte) (Result, error) {
	want, err := ParseValue(expected)
	if err != nil {
		return Result{}, &domain.ParseError{Format: domain.FormatJSON, Reason: "expected output", Err: err}
	}
	got, err := ParseValue(submitted)
	if err != nil {
		return Result{}, &domain.ParseError{Format: domain.FormatJSON, Reason: "submission", Err: err}
	}

	r := Result{Format: domain.FormatJSON, Total: 1}
	if want.Equal(got) {
		r.Matched = 1
	}
	r.Score = ratio(r.Matched, r.Total)
	return r, nil
}

func scoreText(expected, submitted []byte) Result {
	// Whole-document trim only; interior whitespace stays significant.
	r := Result{Format: domain.FormatText, Total: 1}
	if bytes.Equal(bytes.TrimSpace(expected), bytes.TrimSpace(submitted)) {
		r.Matched = 1
	}
	r.Score = ratio(r.Matched, r.Total)
	return r
}

// ratio maps match counts to [0, 100]. A full match yields the exact
// PerfectScore constant so unlock gating never depends on float drift.
func ratio(matched, total int) float64 {
	if matched == total {
		return domain.PerfectScore
	}
	return 100 * float64(matched) / float64(total)
}

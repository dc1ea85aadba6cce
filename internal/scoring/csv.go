package scoring

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/contestkit/arena/internal/domain"
)

// table is a header-tagged row table: the first csv record names the
// columns, every later record becomes an associative row keyed by column
// name. All cells are trimmed at parse time.
type table struct {
	header []string
	rows   []map[string]string
}

// scoreCSV grades row by row. A row matches when it carries exactly the
// same column set as the expected row at the same position and every
// column value is equal after trimming. The denominator is fixed at the
// expected table's row count, so rows missing from the submission count
// against the score. Extra submitted rows are ignored.
func scoreCSV(expected, submitted []byte) (Result, error) {
	want, err := parseTable(expected)
	if err != nil {
		return Result{}, &domain.ParseError{Format: domain.FormatCSV, Reason: "expected output", Err: err}
	}
	if len(want.rows) == 0 {
		return Result{}, &domain.ParseError{Format: domain.FormatCSV, Reason: "expected output has no data rows"}
	}

	got, err := parseTable(submitted)
	if err != nil {
		return Result{}, &domain.ParseError{Format: domain.FormatCSV, Reason: "submission", Err: err}
	}

	r := Result{Format: domain.FormatCSV, Total: len(want.rows)}
	for i, wantRow := range want.rows {
		if i >= len(got.rows) {
			break
		}
		if rowsEqual(wantRow, got.rows[i]) {
			r.Matched++
		}
	}
	r.Score = ratio(r.Matched, r.Total)
	return r, nil
}

// parseTable reads csv content into a table. Blank lines are skipped.
// Records may have ragged lengths: a short record carries only the
// columns it has values for, and cells beyond the header are dropped
// since no column names them. An empty document parses to an empty
// table, not an error.
func parseTable(data []byte) (table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return table{}, err
	}
	if len(records) == 0 {
		return table{}, nil
	}

	t := table{header: trimAll(records[0])}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(rec))
		for i, cell := range rec {
			if i >= len(t.header) {
				break
			}
			row[t.header[i]] = strings.TrimSpace(cell)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func rowsEqual(want, got map[string]string) bool {
	if len(want) != len(got) {
		return false
	}
	for col, wantVal := range want {
		gotVal, ok := got[col]
		if !ok || gotVal != wantVal {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

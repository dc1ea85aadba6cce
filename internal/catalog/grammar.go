package catalog

import (
	"strconv"
	"strings"

	"github.com/contestkit/arena/internal/domain"
)

// artifactKind identifies which naming rule a file matched.
type artifactKind int

const (
	artifactProblem artifactKind = iota
	artifactInput
	artifactOutput
	artifactCombined
)

// capture says what a digit run in a filename stands for.
type capture int

const (
	capNone capture = iota
	capMilestone
	capTestCase
)

// token is one element of a filename rule: a literal that must appear
// verbatim, or a capture that consumes a run of digits.
type token struct {
	lit string
	cap capture
}

func lit(s string) token  { return token{lit: s} }
func num(c capture) token { return token{cap: c} }

// rule is one row of the filename grammar. The whole base name must be
// consumed by the token sequence, and the extension must be listed.
type rule struct {
	kind artifactKind
	toks []token
	exts []string
}

// grammar is the complete artifact naming convention as data. Matching is
// case-insensitive and exact: a name that merely contains a pattern as a
// substring does not match.
var grammar = []rule{
	{
		kind: artifactProblem,
		toks: []token{lit("problem_m"), num(capMilestone)},
		exts: []string{"pdf"},
	},
	{
		kind: artifactInput,
		toks: []token{lit("testcase_m"), num(capMilestone), lit("_t"), num(capTestCase), lit("_input")},
		exts: []string{"csv", "json", "txt"},
	},
	{
		kind: artifactOutput,
		toks: []token{lit("testcase_m"), num(capMilestone), lit("_t"), num(capTestCase), lit("_output")},
		exts: []string{"csv", "json", "txt"},
	},
	{
		// Legacy combined convention: one csv artifact holds both the input
		// and the expected answer column.
		kind: artifactCombined,
		toks: []token{lit("testcase_m"), num(capMilestone), lit("_t"), num(capTestCase)},
		exts: []string{"csv"},
	},
}

// match is the result of running a filename through the grammar.
type match struct {
	kind      artifactKind
	milestone int
	testcase  int
	format    domain.Format
}

// matchName runs a filename through the grammar table. Unmatched names
// return ok=false; they are ignored by the catalog, never an error.
func matchName(name string) (match, bool) {
	lower := strings.ToLower(name)
	dot := strings.LastIndexByte(lower, '.')
	if dot <= 0 || dot == len(lower)-1 {
		return match{}, false
	}
	base, ext := lower[:dot], lower[dot+1:]

	for _, r := range grammar {
		if !containsExt(r.exts, ext) {
			continue
		}
		if m, ok := applyRule(r, base, ext); ok {
			return m, true
		}
	}
	return match{}, false
}

// applyRule walks the token sequence over the base name. Every byte of
// the base must be consumed for the rule to match.
func applyRule(r rule, base, ext string) (match, bool) {
	m := match{kind: r.kind}
	rest := base

	for _, tok := range r.toks {
		if tok.cap == capNone {
			if !strings.HasPrefix(rest, tok.lit) {
				return match{}, false
			}
			rest = rest[len(tok.lit):]
			continue
		}

		digits := leadingDigits(rest)
		if digits == "" {
			return match{}, false
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n <= 0 {
			// Ids are positive integers; zero and overflow are rejected.
			return match{}, false
		}
		switch tok.cap {
		case capMilestone:
			m.milestone = n
		case capTestCase:
			m.testcase = n
		}
		rest = rest[len(digits):]
	}

	if rest != "" {
		return match{}, false
	}

	if r.kind != artifactProblem {
		format, ok := domain.ParseFormat(ext)
		if !ok {
			return match{}, false
		}
		m.format = format
	}
	return m, true
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// Package progression computes which test cases of a milestone are
// accessible. All functions are pure and total: they take an immutable
// score snapshot, perform no I/O, and return empty results for empty
// inputs instead of failing.
package progression

import "github.com/contestkit/arena/internal/domain"

// Unlocked walks the discovered test case ids in ascending order and
// returns the unlocked prefix. The first discovered id is always
// unlocked. Each subsequent id n is unlocked only if its numeric
// predecessor n-1 was itself discovered and carries a score of exactly
// 100; the scan stops at the first id that fails, so the result is
// always a contiguous prefix of discovered. Missing data never implies
// unlocked.
//
// discovered must be sorted ascending; scores may be nil or incomplete.
func Unlocked(discovered []int, scores map[int]float64) []int {
	if len(discovered) == 0 {
		return nil
	}

	unlocked := []int{discovered[0]}
	for i := 1; i < len(discovered); i++ {
		prev, id := discovered[i-1], discovered[i]
		if prev != id-1 {
			break
		}
		if scores[prev] != domain.PerfectScore {
			break
		}
		unlocked = append(unlocked, id)
	}
	return unlocked
}

// RepairSelection keeps a previously selected test case if it is still
// unlocked, otherwise falls back to the last unlocked id, then to the
// first discovered id. The last unlocked id is the frontier: a stale
// selection past it snaps back to the test case the user was working
// toward, not to the start of the milestone. Callers must always end
// up with a selectable value; only a milestone with no discovered test
// cases yields zero.
func RepairSelection(previous int, unlocked, discovered []int) int {
	for _, id := range unlocked {
		if id == previous {
			return previous
		}
	}
	if len(unlocked) > 0 {
		return unlocked[len(unlocked)-1]
	}
	if len(discovered) > 0 {
		return discovered[0]
	}
	return 0
}

// NextAfter returns the unlocked id immediately following current, for
// use after a perfect score was just recorded. The suggestion is
// advisory: it never mutates selection state. ok is false when current
// is the last unlocked id or not unlocked at all.
func NextAfter(current int, unlocked []int) (next int, ok bool) {
	for i, id := range unlocked {
		if id == current {
			if i+1 < len(unlocked) {
				return unlocked[i+1], true
			}
			return 0, false
		}
	}
	return 0, false
}

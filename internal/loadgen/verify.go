package loadgen

import (
	"fmt"
	"sort"
	"strings"
)

const maxReportedProblems = 10

// verifyBoards checks every board is sorted by score descending and that each
// player with an accepted submission shows exactly its best accepted score.
// It returns the number of players that matched.
func verifyBoards(boards map[string][]Entry, expected map[playerKey]float64) (int, error) {
	var problems []string

	tiers := make([]string, 0, len(boards))
	for tier := range boards {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	for _, tier := range tiers {
		entries := boards[tier]
		if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score }) {
			problems = append(problems, fmt.Sprintf("tier %q is not sorted by score", tier))
		}
	}

	verified := 0
	for key, want := range expected {
		got, ok := find(boards[key.tier], key.name)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("tier %q: %s missing, want %g", key.tier, key.name, want))
		case got != want:
			problems = append(problems, fmt.Sprintf("tier %q: %s has %g, want %g", key.tier, key.name, got, want))
		default:
			verified++
		}
	}

	if len(problems) == 0 {
		return verified, nil
	}
	sort.Strings(problems)
	more := ""
	if len(problems) > maxReportedProblems {
		more = fmt.Sprintf(" (and %d more)", len(problems)-maxReportedProblems)
		problems = problems[:maxReportedProblems]
	}
	return verified, fmt.Errorf("%w: %s%s", ErrVerification, strings.Join(problems, "; "), more)
}

func find(entries []Entry, name string) (float64, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e.Score, true
		}
	}
	return 0, false
}

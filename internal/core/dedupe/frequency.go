package dedupe

import (
	"sort"

	"github.com/agenthands/issuedup/internal/core/model"
)

// MostCommon counts exact repeats of each string and returns them ordered by
// descending count, ties kept in first-occurrence order. k <= 0 returns every
// distinct string.
func MostCommon(texts []string, k int) []model.FrequencyEntry {
	counts := make(map[string]int, len(texts))
	var order []string
	for _, t := range texts {
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}

	entries := make([]model.FrequencyEntry, len(order))
	for i, t := range order {
		entries[i] = model.FrequencyEntry{Text: t, Count: counts[t]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// CountUnique returns the number of distinct exact strings.
func CountUnique(texts []string) int {
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		seen[t] = struct{}{}
	}
	return len(seen)
}

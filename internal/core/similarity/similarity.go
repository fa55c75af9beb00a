// Package similarity scores how alike two short strings are using a blend of
// token-set overlap and character-sequence alignment.
package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Scorer returns a similarity in [0,1] for a pair of strings.
type Scorer func(a, b string) float64

// Score lowercases both strings and returns the mean of their token Jaccard
// index and their sequence-matching ratio. It is symmetric and total: empty
// and whitespace-only input never panics or divides by zero.
func Score(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	// The matcher's tie-breaking depends on argument order.
	if b < a {
		a, b = b, a
	}
	return (jaccard(a, b) + sequenceRatio(a, b)) / 2
}

// Jaccard returns |A∩B| / |A∪B| over the lowercase whitespace-delimited token
// sets of a and b. Two empty sets score 1, one empty set scores 0.
func Jaccard(a, b string) float64 {
	return jaccard(strings.ToLower(a), strings.ToLower(b))
}

// SequenceRatio returns 2*M/T where M is the number of runes in the matching
// blocks found by longest-common-block recursion and T is the combined rune
// length. Two empty strings score 1.
func SequenceRatio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if b < a {
		a, b = b, a
	}
	return sequenceRatio(a, b)
}

func jaccard(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func sequenceRatio(a, b string) float64 {
	// No junk heuristic: every character takes part in matching.
	m := difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil)
	return m.Ratio()
}

// runes splits s into one element per code point, the unit the matcher aligns.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

package dedupe

import (
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/agenthands/issuedup/internal/core/similarity"
)

// GroupDuplicates partitions texts in a single head-anchored pass. Each
// unclaimed index becomes a head and claims every later unclaimed index whose
// similarity to the head is at least threshold. Members are never compared
// with each other, so the grouping is not transitive.
//
// Heads that claim nothing are returned as singletons; every index ends up in
// exactly one group or in singletons.
func GroupDuplicates(texts []string, threshold float64, score similarity.Scorer) ([]model.DuplicateGroup, []int) {
	if score == nil {
		score = similarity.Score
	}

	processed := make([]bool, len(texts))
	var groups []model.DuplicateGroup
	var singletons []int

	for i := range texts {
		if processed[i] {
			continue
		}

		group := model.DuplicateGroup{
			Head:      texts[i],
			HeadIndex: i,
			Members:   []string{texts[i]},
			Indices:   []int{i},
		}

		for j := i + 1; j < len(texts); j++ {
			if processed[j] {
				continue
			}
			s := score(texts[i], texts[j])
			if s >= threshold {
				group.Members = append(group.Members, texts[j])
				group.Indices = append(group.Indices, j)
				group.Scores = append(group.Scores, s)
				processed[j] = true
			}
		}
		processed[i] = true

		if len(group.Indices) > 1 {
			group.Size = len(group.Indices)
			groups = append(groups, group)
		} else {
			singletons = append(singletons, i)
		}
	}

	return groups, singletons
}

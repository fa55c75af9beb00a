// Package dedupe groups near-duplicate text items and derives the
// duplication statistics used to judge how repetitive a generated batch is.
package dedupe

import (
	"errors"
	"fmt"
	"math"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/agenthands/issuedup/internal/core/similarity"
)

const (
	DefaultThreshold   = 0.7
	DefaultTopK        = 5
	DefaultOverallTopK = 10
)

var (
	ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")
	ErrInvalidTopK      = errors.New("top_k must not be negative")
)

// Analyzer holds the knobs of one analysis. It carries no state between
// calls and is safe for concurrent use once configured.
type Analyzer struct {
	Threshold   float64
	TopK        int // per-category frequency ranking
	OverallTopK int // whole-batch frequency ranking
	Score       similarity.Scorer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Threshold:   DefaultThreshold,
		TopK:        DefaultTopK,
		OverallTopK: DefaultOverallTopK,
		Score:       similarity.Score,
	}
}

// FromConfig copies cfg as is; zero values keep their meaning (threshold 0
// groups everything, top_k 0 lists every entry).
func FromConfig(cfg config.AnalysisConfig) *Analyzer {
	a := NewAnalyzer()
	a.Threshold = cfg.Threshold
	a.TopK = cfg.TopK
	a.OverallTopK = cfg.OverallTopK
	return a
}

// Validate reports a usage error for out-of-range settings. Values are never
// clamped.
func (a *Analyzer) Validate() error {
	if a.Threshold < 0 || a.Threshold > 1 || math.IsNaN(a.Threshold) {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, a.Threshold)
	}
	if a.TopK < 0 || a.OverallTopK < 0 {
		return fmt.Errorf("%w: got top_k=%d overall_top_k=%d", ErrInvalidTopK, a.TopK, a.OverallTopK)
	}
	return nil
}

// Analyze groups items by similarity and computes the report. Empty input
// yields a zero-valued report. Per-category statistics are produced only when
// at least one item carries a category.
func (a *Analyzer) Analyze(items []model.TextItem) (*model.AnalysisReport, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	texts := model.Texts(items)
	groups, singletons := GroupDuplicates(texts, a.Threshold, a.Score)

	report := &model.AnalysisReport{
		TotalItems:        len(items),
		Threshold:         a.Threshold,
		DuplicateGroups:   groups,
		Singletons:        singletons,
		MostCommonOverall: MostCommon(texts, a.OverallTopK),
	}
	if report.DuplicateGroups == nil {
		report.DuplicateGroups = []model.DuplicateGroup{}
	}
	if report.Singletons == nil {
		report.Singletons = []int{}
	}

	for _, g := range groups {
		report.TotalDuplicates += g.Size
	}
	if report.TotalItems > 0 {
		report.DuplicationRate = float64(report.TotalDuplicates) / float64(report.TotalItems)
	}

	a.analyzeCategories(items, report)
	return report, nil
}

func (a *Analyzer) analyzeCategories(items []model.TextItem, report *model.AnalysisReport) {
	byCategory := make(map[string][]string)
	var order []string
	tagged := false
	for _, it := range items {
		if it.Category != "" {
			tagged = true
		}
		if _, ok := byCategory[it.Category]; !ok {
			order = append(order, it.Category)
		}
		byCategory[it.Category] = append(byCategory[it.Category], it.Text)
	}
	if !tagged {
		return
	}

	report.ByCategory = make(map[string]model.CategoryStats, len(order))
	report.Categories = order
	for _, cat := range order {
		report.ByCategory[cat] = a.categoryStats(cat, byCategory[cat])
	}
}

func (a *Analyzer) categoryStats(category string, texts []string) model.CategoryStats {
	unique := CountUnique(texts)
	groups, _ := GroupDuplicates(texts, a.Threshold, a.Score)

	stats := model.CategoryStats{
		Category:        category,
		Total:           len(texts),
		Unique:          unique,
		DuplicateGroups: len(groups),
		MostCommon:      MostCommon(texts, a.TopK),
	}
	if len(texts) > 0 {
		stats.DuplicationRate = 1 - float64(unique)/float64(len(texts))
	}
	return stats
}

// Analyze runs a default Analyzer with the given threshold.
func Analyze(items []model.TextItem, threshold float64) (*model.AnalysisReport, error) {
	a := NewAnalyzer()
	a.Threshold = threshold
	return a.Analyze(items)
}

// AnalyzeTexts is Analyze for untagged strings.
func AnalyzeTexts(texts []string, threshold float64) (*model.AnalysisReport, error) {
	return Analyze(model.NewTextItems(texts), threshold)
}

package model

// DuplicateGroup is a head item together with every later item that scored at
// or above the threshold against it. Members[0] and Indices[0] are the head.
type DuplicateGroup struct {
	Head      string    `json:"head"`
	HeadIndex int       `json:"head_index"`
	Members   []string  `json:"members"`
	Indices   []int     `json:"indices"`
	Size      int       `json:"size"`
	Scores    []float64 `json:"similarity_scores"` // head vs Members[1:]
}

type FrequencyEntry struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// CategoryStats holds exact-string duplication figures for one category.
type CategoryStats struct {
	Category        string           `json:"category"`
	Total           int              `json:"total"`
	Unique          int              `json:"unique"`
	DuplicationRate float64          `json:"duplication_rate"`
	DuplicateGroups int              `json:"duplicate_groups"`
	MostCommon      []FrequencyEntry `json:"most_common"`
}

type AnalysisReport struct {
	TotalItems        int                      `json:"total_items"`
	Threshold         float64                  `json:"threshold"`
	DuplicateGroups   []DuplicateGroup         `json:"duplicate_groups"`
	Singletons        []int                    `json:"singletons"`
	TotalDuplicates   int                      `json:"total_duplicates"`
	DuplicationRate   float64                  `json:"duplication_rate"`
	ByCategory        map[string]CategoryStats `json:"by_category,omitempty"`
	Categories        []string                 `json:"categories,omitempty"` // first-seen order
	MostCommonOverall []FrequencyEntry         `json:"most_common_overall"`
}

// Severity labels the overall duplication rate. It is informational only.
type Severity string

const (
	SeverityAcceptable Severity = "acceptable"
	SeverityModerate   Severity = "moderate"
	SeverityHigh       Severity = "high"
)

// SeverityOf bands a duplication rate: above 0.30 is high, above 0.15 is
// moderate, anything else is acceptable.
func SeverityOf(rate float64) Severity {
	switch {
	case rate > 0.30:
		return SeverityHigh
	case rate > 0.15:
		return SeverityModerate
	default:
		return SeverityAcceptable
	}
}

func (r *AnalysisReport) Severity() Severity {
	return SeverityOf(r.DuplicationRate)
}

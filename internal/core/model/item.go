package model

// TextItem is one generated string under analysis, optionally tagged with the
// category it was generated for and the generation round that produced it.
type TextItem struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	Batch    int    `json:"batch,omitempty"` // 1-based round, 0 when unknown
}

// NewTextItems wraps plain strings as untagged items.
func NewTextItems(texts []string) []TextItem {
	items := make([]TextItem, len(texts))
	for i, t := range texts {
		items[i] = TextItem{Text: t}
	}
	return items
}

// Texts returns the raw strings of items in order.
func Texts(items []TextItem) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

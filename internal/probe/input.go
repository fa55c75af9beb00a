package probe

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agenthands/issuedup/internal/core/model"
)

// ReadItems decodes an offline batch. A JSON array of strings or of
// {"text","category"} objects is accepted; anything else is read as one
// item per non-blank line.
func ReadItems(r io.Reader) ([]model.TextItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var texts []string
		if err := json.Unmarshal(trimmed, &texts); err == nil {
			return model.NewTextItems(texts), nil
		}
		var items []model.TextItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse JSON input: %w", err)
		}
		return items, nil
	}

	var items []model.TextItem
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		items = append(items, model.TextItem{Text: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	return items, nil
}

func LoadItems(path string) ([]model.TextItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input '%s': %w", path, err)
	}
	defer f.Close()
	return ReadItems(f)
}

// Archive is the on-disk record of a probe run.
type Archive struct {
	Timestamp time.Time             `json:"timestamp"`
	Tests     int                   `json:"test_count"`
	Failed    int                   `json:"failed"`
	Results   []Result              `json:"results"`
	Analysis  *model.AnalysisReport `json:"analysis"`
}

func WriteArchive(w io.Writer, a Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	return nil
}

func SaveArchive(path string, a Archive) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", path, err)
	}
	if err := WriteArchive(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

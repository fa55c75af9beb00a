// Package report renders an AnalysisReport for people: a console summary with
// severity banding, and an indented JSON dump.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/issuedup/internal/core/common"
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorTitle    = "#7D56F4"
	colorOK       = "#04B575"
	colorWarn     = "#FFB86C"
	colorHigh     = "#FF5555"
	colorMuted    = "#626262"
	ruleWidth     = 80
	maxGroupLines = 3
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorTitle))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorOK))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWarn))
	highStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorHigh))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
)

// Advice is printed under a high-duplication verdict.
var Advice = []string{
	"Add field- and industry-specific keywords to the generation prompt",
	"Strengthen the instruction to avoid previously issued topics",
	"Ask for more varied perspectives (technology, society, economy, environment)",
	"Revisit the per-issue length limit",
	"Raise sampling temperature or request more original phrasing",
}

type Options struct {
	Title       string
	Tests       int // simulated sessions behind the batch; 0 hides the line
	MaxGroups   int // 0 means 5
	HeadRunes   int // 0 means 60
	TopRunes    int // 0 means 40
	NoColor     bool
	ShowOverall bool
}

type renderer struct {
	w       io.Writer
	noColor bool
	err     error
}

func (r *renderer) line(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return s.Render(text)
}

// Render writes the console report.
func Render(w io.Writer, rep *model.AnalysisReport, opts Options) error {
	if opts.Title == "" {
		opts.Title = "Issue duplication report"
	}
	if opts.MaxGroups <= 0 {
		opts.MaxGroups = 5
	}
	if opts.HeadRunes <= 0 {
		opts.HeadRunes = 60
	}
	if opts.TopRunes <= 0 {
		opts.TopRunes = 40
	}

	r := &renderer{w: w, noColor: opts.NoColor}
	rule := strings.Repeat("=", ruleWidth)

	r.line("%s", rule)
	r.line("%s", r.style(titleStyle, opts.Title))
	r.line("%s", rule)
	r.line("Summary:")
	if opts.Tests > 0 {
		r.line("  - sessions: %d", opts.Tests)
	}
	r.line("  - items: %d", rep.TotalItems)
	r.line("  - duplicate groups: %d", len(rep.DuplicateGroups))
	r.line("  - duplicated items: %d", rep.TotalDuplicates)
	r.line("  - duplication rate: %s (threshold %.2f)", Percent(rep.DuplicationRate), rep.Threshold)
	r.line("")

	switch rep.Severity() {
	case model.SeverityHigh:
		r.line("%s", r.style(highStyle, "HIGH: duplication rate is above 30%. The generation prompt needs work."))
	case model.SeverityModerate:
		r.line("%s", r.style(warnStyle, "MODERATE: duplication rate is above 15%. Review the generation prompt."))
	default:
		r.line("%s", r.style(okStyle, "OK: duplication rate is acceptable."))
	}
	r.line("")

	if len(rep.DuplicateGroups) > 0 {
		r.line("Top duplicate groups:")
		for i, g := range rep.DuplicateGroups {
			if i >= opts.MaxGroups {
				r.line("%s", r.style(mutedStyle, fmt.Sprintf("  ... %d more", len(rep.DuplicateGroups)-opts.MaxGroups)))
				break
			}
			r.line("  %d. size %d", i+1, g.Size)
			for j, m := range g.Members {
				if j >= maxGroupLines {
					break
				}
				r.line("     - %s", common.Truncate(m, opts.HeadRunes, "..."))
			}
		}
		r.line("")
	}

	if len(rep.Categories) > 0 {
		r.line("By category:")
		for _, cat := range rep.Categories {
			stats := rep.ByCategory[cat]
			label := cat
			if label == "" {
				label = "(untagged)"
			}
			r.line("  * %s: total %d, unique %d, duplication %s, similar groups %d",
				label, stats.Total, stats.Unique, Percent(stats.DuplicationRate), stats.DuplicateGroups)
			if len(stats.MostCommon) > 0 {
				top := stats.MostCommon[0]
				r.line("     most frequent: %s (%dx)", common.Truncate(top.Text, opts.TopRunes, "..."), top.Count)
			}
		}
		r.line("")
	}

	if opts.ShowOverall && len(rep.MostCommonOverall) > 0 {
		r.line("Most frequent issues:")
		for i, e := range rep.MostCommonOverall {
			r.line("  %2d. (%dx) %s", i+1, e.Count, e.Text)
		}
		r.line("")
	}

	if rep.Severity() == model.SeverityHigh {
		r.line("Prompt tuning suggestions:")
		for i, a := range Advice {
			r.line("  %d. %s", i+1, a)
		}
		r.line("")
	}

	r.line("%s", rule)
	return r.err
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *model.AnalysisReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Percent formats a rate the way the console report shows it.
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// Package generation asks an LLM for short career issues a student could
// explore, steering each round away from issues already handed out.
package generation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/common"
	"github.com/agenthands/issuedup/internal/llm"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCount    = 5
	DefaultMaxRunes = 90
	minIssueRunes   = 10
)

// DefaultPrompt takes, by argument index: career, selected values, value
// focus areas, the avoidance block, issue count, and the per-issue rune limit.
const DefaultPrompt = `당신은 진로 상담 전문가입니다. 한국 고등학생이 탐구할 만한 %[1]s 분야의 현재 이슈 %[5]d가지를 제시해주세요.

**직업**: %[1]s
**선택한 가치관**: %[2]s
%[4]s
**요구사항**:
1. 한국 고등학생 수준에서 이해하기 쉬운 이슈
2. 현재 한국에서 실제로 논의되고 있는 문제들
3. 선택한 가치관(%[3]s)을 반영한 이슈
4. 각 이슈는 %[6]d자 이내로 구체적이고 상세하게 표현
5. 고등학생이 탐구 주제로 다룰 수 있는 현실적인 내용
6. 이전에 제시된 이슈와 완전히 다른 새로운 관점의 이슈

**응답 형식**: 번호를 붙인 목록으로 한 줄에 하나씩 작성하세요.
1. 이슈1
2. 이슈2
`

// valueFocus maps a value keyword to the kind of issue it should pull in.
var valueFocus = []struct {
	keyword string
	focus   string
}{
	{"경제적 가치", "경제적 안정성과 수입 관련 이슈"},
	{"사회적 가치", "사회적 기여와 봉사 관련 이슈"},
	{"공동체적 가치", "협력과 소통 관련 이슈"},
	{"능력 발휘", "전문성 개발과 역량 강화 관련 이슈"},
	{"자율·창의성", "창의성과 자율성 관련 이슈"},
	{"미래 비전", "미래 성장성과 혁신 관련 이슈"},
}

type issueList struct {
	Issues []string `json:"issues"`
}

type Generator struct {
	LLM      llm.LLMClient
	Prompt   string
	Count    int
	MaxRunes int
}

func NewGenerator(llmClient llm.LLMClient, cfg config.GenerationConfig) *Generator {
	g := &Generator{
		LLM:      llmClient,
		Prompt:   cfg.Prompt,
		Count:    cfg.Count,
		MaxRunes: cfg.MaxRunes,
	}
	if g.Prompt == "" {
		g.Prompt = DefaultPrompt
	}
	if g.Count <= 0 {
		g.Count = DefaultCount
	}
	if g.MaxRunes <= 0 {
		g.MaxRunes = DefaultMaxRunes
	}
	return g
}

// Generate returns at most Count issues for the career, padded with generic
// ones when the LLM yields too few. When the LLM call
// fails the generic fallback issues are returned together with the error so
// callers can choose to serve them anyway.
func (g *Generator) Generate(ctx context.Context, career string, values []string, previous []string) ([]string, error) {
	prompt := g.BuildPrompt(career, values, previous)

	response, err := g.LLM.Generate(ctx, prompt)
	if err != nil {
		return fallbackIssues(career), fmt.Errorf("failed to generate issues: %w", err)
	}

	issues := g.parse(response)
	if len(issues) < g.Count {
		log.Debug().Str("career", career).Int("parsed", len(issues)).Msg("Padding generated issues with defaults")
		issues = pad(issues, defaultIssues(career), g.Count)
	}
	if len(issues) > g.Count {
		issues = issues[:g.Count]
	}
	return issues, nil
}

func (g *Generator) BuildPrompt(career string, values []string, previous []string) string {
	selected := "없음"
	if len(values) > 0 {
		selected = strings.Join(values, ", ")
	}

	var focus []string
	for _, v := range values {
		for _, vf := range valueFocus {
			if strings.Contains(v, vf.keyword) {
				focus = append(focus, vf.focus)
				break
			}
		}
	}

	avoid := ""
	if len(previous) > 0 {
		avoid = fmt.Sprintf(`
**중복 방지**: 다음과 의미나 단어가 중복되지 않는 완전히 새로운 이슈를 제시해주세요:
%s

위 이슈들과 유사한 주제나 단어는 절대 사용하지 마세요.
`, strings.Join(previous, ", "))
	}

	return fmt.Sprintf(g.Prompt, career, selected, strings.Join(focus, ", "), avoid, g.Count, g.MaxRunes)
}

// parse accepts either {"issues": [...]} or a numbered/dashed list.
func (g *Generator) parse(response string) []string {
	var raw []string
	if list, err := common.ParseJSON[issueList](response); err == nil && len(list.Issues) > 0 {
		raw = list.Issues
	} else {
		raw = common.ParseListItems(response)
	}

	var issues []string
	for _, issue := range raw {
		issue = strings.TrimSpace(issue)
		if utf8.RuneCountInString(issue) <= minIssueRunes {
			continue
		}
		issues = append(issues, common.Truncate(issue, g.MaxRunes, "..."))
	}
	return issues
}

// pad appends defaults not already present until issues holds count entries.
func pad(issues, defaults []string, count int) []string {
	seen := make(map[string]bool, len(issues))
	for _, issue := range issues {
		seen[issue] = true
	}
	for _, d := range defaults {
		if len(issues) >= count {
			break
		}
		if !seen[d] {
			issues = append(issues, d)
			seen[d] = true
		}
	}
	return issues
}

func defaultIssues(career string) []string {
	return []string{
		fmt.Sprintf("%s 분야의 국제 경쟁력 강화 필요성", career),
		fmt.Sprintf("%s 업계의 지속가능한 발전 방안", career),
		fmt.Sprintf("%s 전문가들의 역량 개발 과제", career),
		fmt.Sprintf("%s 분야의 사회적 책임 강화", career),
		fmt.Sprintf("%s 업무 환경 개선 필요성", career),
	}
}

func fallbackIssues(career string) []string {
	return []string{
		fmt.Sprintf("%s 분야의 경쟁력 강화 필요", career),
		"기술 변화에 대한 적응 과제",
		"전문성 개발 요구 증가",
		"워라밸 개선 필요",
		"미래 시장 변화 대응",
	}
}

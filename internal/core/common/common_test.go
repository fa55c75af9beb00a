package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	type payload struct {
		Issues []string `json:"issues"`
	}

	got, err := ParseJSON[payload]("Sure!\n```json\n{\"issues\": [\"a\", \"b\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Issues)

	_, err = ParseJSON[payload]("1. no json here")
	assert.Error(t, err)

	_, err = ParseJSON[payload]("} {")
	assert.Error(t, err)
}

func TestParseListItems(t *testing.T) {
	text := `다음은 이슈입니다:
1. 첫 번째 이슈
2) 두 번째 이슈
- 세 번째 이슈

10. 열 번째 이슈
설명 문장은 무시`

	assert.Equal(t, []string{
		"첫 번째 이슈",
		"두 번째 이슈",
		"세 번째 이슈",
		"열 번째 이슈",
	}, ParseListItems(text))

	assert.Empty(t, ParseListItems(""))
}

func TestParseListItems_LeadingYear(t *testing.T) {
	text := "1. 2030년 의료 인력 수급 전망\n2030년 의료 인력 수급\n3) 5G 원격 진료 확대"

	assert.Equal(t, []string{
		"2030년 의료 인력 수급 전망",
		"2030년 의료 인력 수급",
		"5G 원격 진료 확대",
	}, ParseListItems(text))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3, "..."))
	assert.Equal(t, "ab...", Truncate("abc", 2, "..."))
	assert.Equal(t, "인력...", Truncate("인력 부족", 2, "..."))
	assert.Equal(t, "abc", Truncate("abc", -1, "..."))
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type AnalysisConfig struct {
	Threshold   float64 `toml:"threshold"`
	TopK        int     `toml:"top_k"`
	OverallTopK int     `toml:"overall_top_k"`
}

type ProbeConfig struct {
	Careers     []string   `toml:"careers"`
	ValueSets   [][]string `toml:"value_sets"`
	Tests       int        `toml:"tests"`
	Rounds      int        `toml:"rounds"`
	Concurrency int        `toml:"concurrency"`
}

type GenerationConfig struct {
	Count    int    `toml:"count"`
	MaxRunes int    `toml:"max_runes"`
	Prompt   string `toml:"prompt"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Generation GenerationConfig `toml:"generation"`
	Probe      ProbeConfig      `toml:"probe"`
	Server     ServerConfig     `toml:"server"`
}

// Default returns a complete configuration; a config file only needs to set
// what it changes.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "gpt-oss:latest",
			BaseURL:     "http://localhost:11434",
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Analysis: AnalysisConfig{
			Threshold:   0.7,
			TopK:        5,
			OverallTopK: 10,
		},
		Generation: GenerationConfig{
			Count:    5,
			MaxRunes: 90,
		},
		Probe: ProbeConfig{
			Careers: []string{
				"의사", "교사", "개발자", "디자이너", "변호사",
				"간호사", "공무원", "엔지니어", "마케터", "상담사",
			},
			ValueSets: [][]string{
				{"경제적 가치 - 높은 수입, 안정적인 직업"},
				{"사회적 가치 - 사회에 긍정적인 영향, 봉사"},
				{"공동체적 가치 - 사람들과 협력, 소통"},
				{"능력 발휘 - 나의 재능과 역량을 최대한 발휘"},
				{"자율·창의성 - 독립적으로 일하고 새로운 아이디어 창출"},
				{"미래 비전 - 성장 가능성, 혁신적인 분야"},
			},
			Tests:       10,
			Rounds:      3,
			Concurrency: 4,
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from the environment when the variables are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("DUP_THRESHOLD"); v != "" {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DUP_THRESHOLD %q: %w", v, err)
		}
		c.Analysis.Threshold = th
	}
	return nil
}

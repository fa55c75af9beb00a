// Command probe measures how often the issue generator repeats itself. It
// either drives simulated sessions against the configured LLM or analyzes an
// existing batch with -input.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/dedupe"
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/agenthands/issuedup/internal/core/report"
	"github.com/agenthands/issuedup/internal/generation"
	"github.com/agenthands/issuedup/internal/llm"
	"github.com/agenthands/issuedup/internal/probe"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		cfgPath   = flag.String("config", "config/config.toml", "path to the TOML config")
		tests     = flag.Int("tests", 0, "number of simulated sessions (0 uses the config)")
		rounds    = flag.Int("rounds", 0, "generation rounds per session (0 uses the config)")
		threshold = flag.Float64("threshold", -1, "similarity threshold in [0, 1] (negative uses the config)")
		input     = flag.String("input", "", "analyze this file instead of generating (JSON array or one item per line)")
		output    = flag.String("output", "", "write the JSON archive to this file")
		jsonOut   = flag.Bool("json", false, "print the report as JSON")
		noColor   = flag.Bool("no-color", false, "disable colored output")
		seed      = flag.Int64("seed", 0, "seed career and value selection (0 is random)")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: *noColor})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Debug().Err(err).Msg("Config not loaded, using defaults")
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal().Err(err).Msg("Invalid environment configuration")
	}
	if *tests > 0 {
		cfg.Probe.Tests = *tests
	}
	if *rounds > 0 {
		cfg.Probe.Rounds = *rounds
	}
	if *threshold >= 0 {
		cfg.Analysis.Threshold = *threshold
	}

	analyzer := dedupe.FromConfig(cfg.Analysis)
	if err := analyzer.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid analysis settings: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		items   []model.TextItem
		results []probe.Result
		title   = "Issue duplication report"
		count   int
	)

	if *input != "" {
		items, err = probe.LoadItems(*input)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load input")
		}
		title = fmt.Sprintf("Duplication report: %s", *input)
	} else {
		results, err = runProbe(ctx, cfg, *seed)
		if err != nil && len(results) == 0 {
			log.Fatal().Err(err).Msg("Probe failed")
		}
		if err != nil {
			log.Warn().Err(err).Msg("Probe interrupted, analyzing partial results")
		}
		items = probe.Items(results)
		count = len(results)
		if failed := probe.Failed(results); failed > 0 {
			log.Warn().Int("failed", failed).Int("tests", count).Msg("Some sessions failed")
		}
	}

	rep, err := analyzer.Analyze(items)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if *jsonOut {
		err = report.WriteJSON(os.Stdout, rep)
	} else {
		err = report.Render(os.Stdout, rep, report.Options{
			Title:       title,
			Tests:       count,
			NoColor:     *noColor,
			ShowOverall: true,
		})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	if *output != "" {
		archive := probe.Archive{
			Timestamp: time.Now().UTC(),
			Tests:     count,
			Failed:    probe.Failed(results),
			Results:   results,
			Analysis:  rep,
		}
		if err := probe.SaveArchive(*output, archive); err != nil {
			log.Fatal().Err(err).Msg("Failed to save archive")
		}
		log.Info().Str("path", *output).Msg("Archive saved")
	}
}

func runProbe(ctx context.Context, cfg *config.Config, seed int64) ([]probe.Result, error) {
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	gen := generation.NewGenerator(llmClient, cfg.Generation)
	runner := probe.NewRunner(gen, cfg.Probe)
	if seed != 0 {
		runner.WithSeed(seed)
	}

	log.Info().
		Int("tests", cfg.Probe.Tests).
		Int("rounds", cfg.Probe.Rounds).
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Msg("Starting probe")

	start := time.Now()
	results, err := runner.Run(ctx, cfg.Probe.Tests)
	log.Info().Dur("elapsed", time.Since(start)).Int("results", len(results)).Msg("Probe finished")
	return results, err
}

package main

import (
	"context"
	"os"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/dedupe"
	"github.com/agenthands/issuedup/internal/generation"
	"github.com/agenthands/issuedup/internal/llm"
	"github.com/agenthands/issuedup/internal/server"
	"github.com/agenthands/issuedup/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfgPath).Msg("Config not loaded, using defaults")
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatal().Err(err).Msg("Invalid environment configuration")
	}

	if err := dedupe.FromConfig(cfg.Analysis).Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid analysis configuration")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create LLM client")
	}

	gen := generation.NewGenerator(llmClient, cfg.Generation)
	srv := server.NewServer(gen, session.NewStore(), cfg.Analysis)
	r := srv.SetupRouter()

	log.Info().
		Str("port", cfg.Server.Port).
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Float64("threshold", cfg.Analysis.Threshold).
		Msg("Starting server")
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

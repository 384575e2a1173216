package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/swayam-agent/server/internal/agent/graph"
	"github.com/swayam-agent/server/internal/agent/model"
	"github.com/swayam-agent/server/internal/agent/repo"
	"github.com/swayam-agent/server/internal/agent/session"
	"github.com/swayam-agent/server/internal/core"
	"github.com/swayam-agent/server/internal/search"
	"github.com/swayam-agent/server/internal/server"
	"github.com/swayam-agent/server/internal/speech"
	logx "github.com/swayam-agent/server/pkg/logger"
	pkgredis "github.com/swayam-agent/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Server server.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true" validate:"required"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// External collaborators
	Speech speech.Config
	Search search.Config

	// Agent configs
	Planner      model.PlannerModelConfig
	Evaluator    model.EvaluatorModelConfig
	Persona      model.PersonaConfig
	Language     model.LanguageConfig
	Conversation model.ConversationConfig

	FileRoot string `envconfig:"TOOL_FILE_ROOT" default:"./workspace"`
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", cfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	runner, err := graph.BuildTurnGraph(ctx, graph.Config{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		Planner:          cfg.Planner,
		Evaluator:        cfg.Evaluator,
		Persona:          cfg.Persona,
		Language:         cfg.Language,
		Conversation:     cfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		Memory:           repo.NewRedisMemoryStore(rdb, ttl),
		Speech:           speech.NewClient(cfg.Speech),
		Gateway:          search.NewGateway(cfg.Search),
		Sessions:         session.NewManager(),
		FileRoot:         cfg.FileRoot,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build turn pipeline")
	}

	srv := server.New(cfg.Server, runner)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logx.Error().Err(err).Msg("HTTP shutdown failed")
		}
	}()

	if err := srv.Run(); err != nil {
		logx.Fatal().Err(err).Msg("HTTP server failed")
	}
}

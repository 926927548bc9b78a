package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/planweave/planweave/internal/agent"
	"github.com/planweave/planweave/internal/agent/skills"
	"github.com/planweave/planweave/internal/agent/tools"
	"github.com/planweave/planweave/internal/config"
	"github.com/planweave/planweave/internal/llm"
	"github.com/planweave/planweave/internal/notify"
	"github.com/planweave/planweave/internal/notify/slack"
	"github.com/planweave/planweave/internal/reflection"
	"github.com/planweave/planweave/internal/server"
	"github.com/planweave/planweave/internal/session"
	"github.com/planweave/planweave/internal/store/postgres"
	redisstore "github.com/planweave/planweave/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("PLANWEAVE_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("PLANWEAVE_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// LLM gateway; any OpenAI-compatible endpoint works.
	gateway := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})

	// Reflection engine over execution history.
	engine := reflection.NewEngine(
		store.Tasks(),
		store.ExecutionLogs(),
		store.Reflections(),
		store,
		gateway,
		reflection.Config{
			WindowDays:         cfg.Reflection.WindowDays,
			LowCompletion:      cfg.Reflection.LowCompletion,
			ConsecutiveLowDays: cfg.Reflection.ConsecutiveLowDays,
			TrendEpsilon:       cfg.Reflection.TrendEpsilon,
		},
	)

	// Notification delivery. Slack is the only platform wired today; the
	// notifier degrades to logging when no platform is named.
	messengers := notify.NewRegistry()
	if cfg.Slack.BotToken != "" {
		messengers.Register(slack.NewFromToken(cfg.Slack.BotToken, cfg.Slack.DefaultChannel))
		log.Info().Msg("Slack notifications enabled")
	}
	notifier := notify.New(messengers)

	// Skill and tool registries.
	skillRegistry := agent.NewSkillRegistry()
	skillRegistry.Register(skills.NewGeneratePlan(gateway))
	skillRegistry.Register(skills.NewAdjustTasks(engine))
	skillRegistry.Register(skills.NewQuery(store.Tasks(), store.Goals()))
	skillRegistry.Register(skills.NewChitchat(gateway))

	toolRegistry := agent.NewToolRegistry(cfg.Agent.ToolTimeout)
	toolRegistry.Register(tools.NewSendNotification(notifier, "slack"))
	toolRegistry.Register(tools.NewDBQuery(store.Tasks(), store.Goals()))
	if cfg.Search.APIKey != "" {
		toolRegistry.Register(tools.NewWebSearch(cfg.Search.APIKey, cfg.Search.BaseURL))
		log.Info().Msg("web search tool enabled")
	}

	// Conversation sessions and the planning agent.
	sessions := session.NewManager(cfg.Agent.SessionTTL)

	planAgent := agent.New(sessions, skillRegistry, toolRegistry, store, pubsub, agent.Config{
		MaxMessages:   cfg.Agent.MaxMessages,
		MaxMemoryKeys: cfg.Agent.MaxMemoryKeys,
	})
	if err := planAgent.ValidateRouting(); err != nil {
		return err
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Periodic sweep of expired sessions.
	go func() {
		ticker := time.NewTicker(cfg.Agent.SessionTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, planAgent, engine)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

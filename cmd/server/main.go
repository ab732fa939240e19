package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/api"
	"github.com/Carlavier/ai-chat-hub/internal/api/middleware"
	"github.com/Carlavier/ai-chat-hub/internal/chat"
	"github.com/Carlavier/ai-chat-hub/internal/config"
	"github.com/Carlavier/ai-chat-hub/internal/handlers"
	"github.com/Carlavier/ai-chat-hub/internal/llm"
	"github.com/Carlavier/ai-chat-hub/internal/models"
	"github.com/Carlavier/ai-chat-hub/internal/presence"
	"github.com/Carlavier/ai-chat-hub/internal/reply"
	"github.com/Carlavier/ai-chat-hub/internal/store"
	"github.com/Carlavier/ai-chat-hub/internal/turn"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Redis store
	redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL,
		store.WithRetention(store.SurfaceRoom, store.RoomRetention(cfg.MaxTurns)))
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisStore.Close()
	logger.Info().Msg("connected to Redis")

	roster := models.DefaultRoster()
	if cfg.RosterFile != "" {
		if roster, err = models.LoadRoster(cfg.RosterFile); err != nil {
			logger.Fatal().Err(err).Str("file", cfg.RosterFile).Msg("roster load failed")
		}
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("generation backend init failed")
	}
	logger.Info().Str("backend", backend.Name()).Strs("bots", roster.Names()).Msg("generation backend ready")

	gen := reply.NewGenerator(backend, reply.Config{
		Model:   cfg.Model,
		Timeout: cfg.GenerationTimeout,
	}, logger)

	userChat := chat.NewUserChat(redisStore, presence.NewTracker(redisStore, cfg.PresenceTTL), logger)

	arenaCfg := chat.DefaultArenaConfig()
	arenaCfg.Delay = cfg.ArenaDelay
	arenaCfg.MaxTokens = cfg.ArenaMaxTokens
	arena, err := chat.NewBotArena(redisStore, gen, roster, arenaCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot arena init failed")
	}

	room := chat.NewMultiBotRoom(redisStore, gen, roster, chat.RoomConfig{
		Mode:      turn.Mode(cfg.RoomMode),
		MaxTokens: cfg.RoomMaxTokens,
	}, logger)

	if cfg.ArenaAutoTick {
		go chat.RunTicker(ctx, cfg.TickInterval, logger.With().Str("surface", string(store.SurfaceArena)).Logger(),
			func(ctx context.Context) error {
				_, err := arena.Tick(ctx)
				return err
			})
	}

	h := handlers.NewHandler(handlers.Deps{
		Chat:   userChat,
		Arena:  arena,
		Room:   room,
		Roster: roster,
		Store:  redisStore,
		Logger: logger,
	})
	limiter := middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
		Whitelist: cfg.RateLimitWhitelist,
	})
	router := api.NewRouter(logger, h, limiter)

	// Generation calls bound the write timeout
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chat hub server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// newBackend selects the generation backend named by the configuration.
func newBackend(ctx context.Context, cfg *config.Config) (llm.Backend, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model)
	case config.ProviderGemini:
		return llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case config.ProviderScripted:
		return llm.NewScripted(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

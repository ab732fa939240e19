package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Generation providers.
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderScripted = "scripted"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string
	Env      string
	RedisURL string

	// Generation backend
	Provider          string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	Model             string
	GenerationTimeout time.Duration

	// Conversation surfaces
	RosterFile     string
	ArenaDelay     time.Duration
	ArenaAutoTick  bool
	TickInterval   time.Duration
	ArenaMaxTokens int
	RoomMaxTokens  int
	MaxTurns       int
	RoomMode       string
	PresenceTTL    time.Duration

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		Provider:      strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:         os.Getenv("MODEL"),
		RosterFile:    os.Getenv("ROSTER_FILE"),
		ArenaAutoTick: getEnv("ARENA_AUTOTICK", "false") == "true",
		RoomMode:      getEnv("ROOM_MODE", "combined"),
	}

	var err error
	if cfg.GenerationTimeout, err = getDuration("GENERATION_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ArenaDelay, err = getDuration("ARENA_DELAY", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.TickInterval, err = getDuration("TICK_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.PresenceTTL, err = getDuration("PRESENCE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ArenaMaxTokens, err = getInt("ARENA_MAX_TOKENS", 80); err != nil {
		return nil, err
	}
	if cfg.RoomMaxTokens, err = getInt("ROOM_MAX_TOKENS", 400); err != nil {
		return nil, err
	}
	if cfg.MaxTurns, err = getInt("MAX_TURNS", 10); err != nil {
		return nil, err
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.Provider)
		}
	case ProviderScripted:
		if c.IsProduction() {
			return fmt.Errorf("provider %q is not allowed in production", c.Provider)
		}
	default:
		return fmt.Errorf("unknown GENERATION_PROVIDER %q", c.Provider)
	}

	if c.MaxTurns <= 0 {
		return fmt.Errorf("MAX_TURNS must be positive, got %d", c.MaxTurns)
	}
	if c.RoomMode != "combined" && c.RoomMode != "round_robin" {
		return fmt.Errorf("ROOM_MODE must be combined or round_robin, got %q", c.RoomMode)
	}
	if c.IsProduction() && os.Getenv("REDIS_URL") == "" {
		return fmt.Errorf("REDIS_URL is required in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Server     ServerConfig
	LLM        LLMConfig
	Agent      AgentConfig
	Reflection ReflectionConfig
	Slack      SlackConfig
	Search     SearchConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds bearer-token verification settings. Token issuance is the
// job of the surrounding auth service; this backend only verifies.
type JWTConfig struct {
	Secret string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// LLMConfig holds language-model gateway settings. BaseURL may point at any
// OpenAI-compatible endpoint.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// AgentConfig holds session and tool-sandbox settings.
type AgentConfig struct {
	SessionTTL    time.Duration
	MaxMessages   int
	MaxMemoryKeys int
	ToolTimeout   time.Duration
}

// ReflectionConfig holds the analysis heuristics. The thresholds are
// deliberate defaults, not derived constants; tune per deployment.
type ReflectionConfig struct {
	WindowDays         int
	LowCompletion      float64
	ConsecutiveLowDays int
	TrendEpsilon       float64
}

// SlackConfig holds the notification delivery settings.
type SlackConfig struct {
	BotToken       string
	DefaultChannel string
}

// SearchConfig holds the web-search tool settings (SerpAPI-compatible).
type SearchConfig struct {
	APIKey  string
	BaseURL string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production, sensitive
// values (JWT secret, DB password, LLM API key) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("PLANWEAVE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("PLANWEAVE_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("PLANWEAVE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("PLANWEAVE_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("PLANWEAVE_SERVER_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	llmTimeout, err := getEnvDuration("PLANWEAVE_LLM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	llmTemperature, err := getEnvFloat("PLANWEAVE_LLM_TEMPERATURE", 0.7)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sessionTTL, err := getEnvDuration("PLANWEAVE_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxMessages, err := getEnvInt("PLANWEAVE_SESSION_MAX_MESSAGES", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxMemoryKeys, err := getEnvInt("PLANWEAVE_SESSION_MAX_MEMORY_KEYS", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	toolTimeout, err := getEnvDuration("PLANWEAVE_TOOL_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	windowDays, err := getEnvInt("PLANWEAVE_REFLECTION_WINDOW_DAYS", 7)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	lowCompletion, err := getEnvFloat("PLANWEAVE_REFLECTION_LOW_COMPLETION", 0.3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	consecutiveLowDays, err := getEnvInt("PLANWEAVE_REFLECTION_CONSECUTIVE_LOW_DAYS", 3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	trendEpsilon, err := getEnvFloat("PLANWEAVE_REFLECTION_TREND_EPSILON", 0.05)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("PLANWEAVE_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("PLANWEAVE_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("PLANWEAVE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("PLANWEAVE_DB_USER", "planweave"),
			Password: getEnv("PLANWEAVE_DB_PASSWORD", ""),
			DBName:   getEnv("PLANWEAVE_DB_NAME", "planweave_dev"),
			SSLMode:  getEnv("PLANWEAVE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("PLANWEAVE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("PLANWEAVE_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("PLANWEAVE_JWT_SECRET", ""),
		},
		Server: ServerConfig{
			Addr:         getEnv("PLANWEAVE_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		LLM: LLMConfig{
			APIKey:      getEnv("PLANWEAVE_LLM_API_KEY", ""),
			BaseURL:     getEnv("PLANWEAVE_LLM_BASE_URL", ""),
			Model:       getEnv("PLANWEAVE_LLM_MODEL", "gpt-4o-mini"),
			Timeout:     llmTimeout,
			Temperature: llmTemperature,
		},
		Agent: AgentConfig{
			SessionTTL:    sessionTTL,
			MaxMessages:   maxMessages,
			MaxMemoryKeys: maxMemoryKeys,
			ToolTimeout:   toolTimeout,
		},
		Reflection: ReflectionConfig{
			WindowDays:         windowDays,
			LowCompletion:      lowCompletion,
			ConsecutiveLowDays: consecutiveLowDays,
			TrendEpsilon:       trendEpsilon,
		},
		Slack: SlackConfig{
			BotToken:       getEnv("PLANWEAVE_SLACK_BOT_TOKEN", ""),
			DefaultChannel: getEnv("PLANWEAVE_SLACK_DEFAULT_CHANNEL", ""),
		},
		Search: SearchConfig{
			APIKey:  getEnv("PLANWEAVE_SEARCH_API_KEY", ""),
			BaseURL: getEnv("PLANWEAVE_SEARCH_BASE_URL", "https://serpapi.com/search"),
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("PLANWEAVE_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("PLANWEAVE_JWT_SECRET must be at least 32 characters")
	}

	if c.LLM.APIKey == "" {
		log.Warn().Msg("PLANWEAVE_LLM_API_KEY is not set; plan generation and reflection analysis will run degraded")
	}

	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("PLANWEAVE_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("PLANWEAVE_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("PLANWEAVE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Agent.SessionTTL <= 0 {
		return fmt.Errorf("PLANWEAVE_SESSION_TTL must be positive, got %s", c.Agent.SessionTTL)
	}
	if c.Agent.MaxMessages < 1 {
		return fmt.Errorf("PLANWEAVE_SESSION_MAX_MESSAGES must be >= 1, got %d", c.Agent.MaxMessages)
	}
	if c.Agent.MaxMemoryKeys < 1 {
		return fmt.Errorf("PLANWEAVE_SESSION_MAX_MEMORY_KEYS must be >= 1, got %d", c.Agent.MaxMemoryKeys)
	}
	if c.Agent.ToolTimeout <= 0 {
		return fmt.Errorf("PLANWEAVE_TOOL_TIMEOUT must be positive, got %s", c.Agent.ToolTimeout)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("PLANWEAVE_LLM_TIMEOUT must be positive, got %s", c.LLM.Timeout)
	}
	if c.Reflection.WindowDays < 1 {
		return fmt.Errorf("PLANWEAVE_REFLECTION_WINDOW_DAYS must be >= 1, got %d", c.Reflection.WindowDays)
	}
	if c.Reflection.LowCompletion < 0 || c.Reflection.LowCompletion > 1 {
		return fmt.Errorf("PLANWEAVE_REFLECTION_LOW_COMPLETION must be in [0,1], got %g", c.Reflection.LowCompletion)
	}
	if c.Reflection.ConsecutiveLowDays < 1 {
		return fmt.Errorf("PLANWEAVE_REFLECTION_CONSECUTIVE_LOW_DAYS must be >= 1, got %d", c.Reflection.ConsecutiveLowDays)
	}
	if c.Reflection.TrendEpsilon < 0 {
		return fmt.Errorf("PLANWEAVE_REFLECTION_TREND_EPSILON must be >= 0, got %g", c.Reflection.TrendEpsilon)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("PLANWEAVE_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("PLANWEAVE_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/ai"
)

// defaultDBPassword is refused in production.
const defaultDBPassword = "changeme"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Vendor routing
	ChatProvider        string // openai, claude, gemini, mistral
	ImageProvider       string // template styles
	CustomImageProvider string // custom style, falls back to ImageProvider

	OpenAIAPIKey     string
	OpenAIChatModel  string
	OpenAIImageModel string
	OpenAIBaseURL    string

	ClaudeAPIKey  string
	ClaudeModel   string
	ClaudeBaseURL string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	GeminiBaseURL    string

	MistralAPIKey  string
	MistralModel   string
	MistralBaseURL string

	ReplicateAPIToken string
	ReplicateModel    string
	ReplicateBaseURL  string

	VendorTimeout time.Duration

	// Image cache
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration

	// S3-compatible re-hosting, optional
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	DemoUserID         string
	RateLimitPerMinute int
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value cannot be
// parsed or if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "wallpaper"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "wallpaper"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		ChatProvider:        envOrDefault("CHAT_PROVIDER", "openai"),
		ImageProvider:       envOrDefault("IMAGE_PROVIDER", "replicate"),
		CustomImageProvider: envOrDefault("CUSTOM_IMAGE_PROVIDER", "openai"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIChatModel:  envOrDefault("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: envOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),

		ClaudeAPIKey:  os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:   envOrDefault("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
		ClaudeBaseURL: os.Getenv("CLAUDE_BASE_URL"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		GeminiImageModel: os.Getenv("GEMINI_MODEL_IMAGE"),
		GeminiBaseURL:    os.Getenv("GEMINI_BASE_URL"),

		MistralAPIKey:  os.Getenv("MISTRAL_API_KEY"),
		MistralModel:   os.Getenv("MISTRAL_MODEL"),
		MistralBaseURL: os.Getenv("MISTRAL_BASE_URL"),

		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateModel:    envOrDefault("REPLICATE_MODEL", "black-forest-labs/flux-schnell"),
		ReplicateBaseURL:  envOrDefault("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		DemoUserID: envOrDefault("DEMO_USER_ID", "demo-user-id"),
	}

	var err error
	if cfg.VendorTimeout, err = durationOrDefault("VENDOR_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationOrDefault("CACHE_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheSweepInterval, err = durationOrDefault("CACHE_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = intOrDefault("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Configured reports whether generated images should be re-hosted.
func (c *Config) S3Configured() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

// AI returns the vendor registry configuration. Vendors without a key are
// left out by ai.NewRegistry.
func (c *Config) AI() ai.Config {
	vendor := func(key, model, imageModel, baseURL string) ai.VendorConfig {
		return ai.VendorConfig{
			APIKey:     key,
			Model:      model,
			ImageModel: imageModel,
			BaseURL:    baseURL,
			Timeout:    c.VendorTimeout,
		}
	}
	return ai.Config{
		Chat:        c.ChatProvider,
		Image:       c.ImageProvider,
		CustomImage: c.CustomImageProvider,
		Vendors: map[string]ai.VendorConfig{
			"openai":    vendor(c.OpenAIAPIKey, c.OpenAIChatModel, c.OpenAIImageModel, c.OpenAIBaseURL),
			"claude":    vendor(c.ClaudeAPIKey, c.ClaudeModel, "", c.ClaudeBaseURL),
			"gemini":    vendor(c.GeminiAPIKey, c.GeminiModel, c.GeminiImageModel, c.GeminiBaseURL),
			"mistral":   vendor(c.MistralAPIKey, c.MistralModel, "", c.MistralBaseURL),
			"replicate": vendor(c.ReplicateAPIToken, c.ReplicateModel, "", c.ReplicateBaseURL),
		},
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid positive integer %q", key, v)
	}
	return n, nil
}

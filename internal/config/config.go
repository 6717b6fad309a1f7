package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default truncation bounds. Both come from the upstream data shapes: README
// text is capped before persistence, QA context is capped before the model
// call. Overridable via environment for experimentation.
const (
	DefaultMaxReadmeChars    = 200000
	DefaultMaxContextChars   = 4000
	DefaultMaxCommentChars   = 500
	DefaultCommentSampleSize = 3
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Reddit
	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
	RedditUserAgent    string

	// Storage
	S3Bucket string
	DataDir  string

	// QA
	AnthropicAPIKey string
	QAModel         string

	// Truncation bounds
	MaxReadmeChars  int
	MaxContextChars int

	// Logging
	LogLevel  string
	LogFormat string // "json" or "console"
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		GitHubToken:        getEnv("GITHUB_TOKEN", ""),
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUsername:     getEnv("REDDIT_USERNAME", ""),
		RedditPassword:     getEnv("REDDIT_PASSWORD", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "insight-agent/1.0"),
		S3Bucket:           getEnv("S3_BUCKET_NAME", ""),
		DataDir:            getEnv("DATA_DIR", "data"),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		QAModel:            getEnv("QA_MODEL", "claude-haiku-4-5-20251001"),
		MaxReadmeChars:     getEnvInt("MAX_README_CHARS", DefaultMaxReadmeChars),
		MaxContextChars:    getEnvInt("MAX_CONTEXT_CHARS", DefaultMaxContextChars),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// Validate validates the configuration. Missing credentials are not errors:
// each capability (GitHub fetch, Reddit fetch, S3 tier, QA) degrades to
// disabled when its prerequisites are absent.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return &ConfigError{Field: "DATA_DIR", Message: "local data directory must not be empty"}
	}
	if c.MaxReadmeChars <= 0 {
		return &ConfigError{Field: "MAX_README_CHARS", Message: "must be a positive integer"}
	}
	if c.MaxContextChars <= 0 {
		return &ConfigError{Field: "MAX_CONTEXT_CHARS", Message: "must be a positive integer"}
	}
	return nil
}

// HasGitHub reports whether the GitHub connector can be used
func (c *Config) HasGitHub() bool {
	return c.GitHubToken != ""
}

// HasReddit reports whether the Reddit connector can be used
func (c *Config) HasReddit() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != "" &&
		c.RedditUsername != "" && c.RedditPassword != ""
}

// HasS3 reports whether the remote storage tier is configured
func (c *Config) HasS3() bool {
	return c.S3Bucket != ""
}

// HasQA reports whether the QA capability is configured
func (c *Config) HasQA() bool {
	return c.AnthropicAPIKey != ""
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

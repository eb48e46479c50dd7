package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the fitness analysis service.
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins string

	// OpenAI configuration
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIChatModel string
	OpenAITimeout   time.Duration

	// Analysis configuration
	MaxImageBytes       int64
	AnalysisMaxTokens   int
	AnalysisTemperature float64

	// Rate limiting
	RateLimitPerMinute int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server defaults
		Port:           getEnv("PORT", "5001"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		// OpenAI defaults
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIChatModel: getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAITimeout:   getDurationEnv("OPENAI_TIMEOUT", 60*time.Second),

		// Analysis defaults (10 MiB image cap)
		MaxImageBytes:       getInt64Env("MAX_IMAGE_BYTES", 10<<20),
		AnalysisMaxTokens:   getIntEnv("ANALYSIS_MAX_TOKENS", 2000),
		AnalysisTemperature: getFloatEnv("ANALYSIS_TEMPERATURE", 0.7),

		// Rate limiting defaults
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 60),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnv gets a float environment variable or returns a default value.
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getInt64Env gets an int64 environment variable or returns a default value.
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

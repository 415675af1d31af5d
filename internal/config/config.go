// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Generator settings
	GroqAPIKey     string
	GroqBaseURL    string
	GeneratorModel string

	// Quality gate settings
	ReviewerProvider string
	ReviewerModel    string
	AnthropicAPIKey  string

	// Streaming
	StreamDelay time.Duration

	// Geocoding
	NominatimBaseURL string
	GeocodeCacheTTL  time.Duration

	// Voice synthesis
	TTSProvider       string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	AWSRegion         string
	PollyVoiceID      string

	// JWT settings; auth is optional and disabled when the secret is empty.
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Generator
		GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:    getEnv("GROQ_BASE_URL", ""),
		GeneratorModel: getEnv("GENERATOR_MODEL", ""),

		// Quality gate
		ReviewerProvider: getEnv("REVIEWER_PROVIDER", "groq"),
		ReviewerModel:    getEnv("REVIEWER_MODEL", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),

		// Streaming
		StreamDelay: getDurationEnv("STREAM_DELAY", 30*time.Millisecond),

		// Geocoding
		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", ""),
		GeocodeCacheTTL:  getDurationEnv("GEOCODE_CACHE_TTL", 720*time.Hour),

		// Voice
		TTSProvider:       getEnv("TTS_PROVIDER", "elevenlabs"),
		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		PollyVoiceID:      getEnv("POLLY_VOICE_ID", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every tunable of the service.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Speech   SpeechConfig
	History  HistoryConfig
	LogLevel string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	upstream, err := loadUpstreamConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	history, err := loadHistoryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Upstream: upstream,
		Speech:   speech,
		History:  history,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// UpstreamConfig describes the generative-text upstream.
type UpstreamConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
}

// Enabled reports whether the required upstream credential is present.
func (c UpstreamConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadUpstreamConfig() (UpstreamConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("UPSTREAM_TIMEOUT"); err != nil {
		return UpstreamConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return UpstreamConfig{}, fmt.Errorf("UPSTREAM_TIMEOUT must be at least 1 second, got %d", *override)
		}
		timeoutSeconds = *override
	}

	// The upstream enforces a vendor-wide request quota; this is the minimum
	// spacing between call starts across the whole process.
	minIntervalMS := 1000
	if override, err := parseOptionalIntEnv("UPSTREAM_MIN_INTERVAL_MS"); err != nil {
		return UpstreamConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return UpstreamConfig{}, fmt.Errorf("UPSTREAM_MIN_INTERVAL_MS must not be negative, got %d", *override)
		}
		minIntervalMS = *override
	}

	return UpstreamConfig{
		APIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:       getEnvOrDefault("GEMINI_MODEL", "gemini-pro"),
		BaseURL:     getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		MinInterval: time.Duration(minIntervalMS) * time.Millisecond,
	}, nil
}

// SpeechConfig describes speech-segment synthesis.
type SpeechConfig struct {
	Enabled  bool
	Language string
	Slow     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	enabled, err := parseBoolEnv("TTS_ENABLED", true)
	if err != nil {
		return SpeechConfig{}, err
	}

	slow, err := parseBoolEnv("TTS_SLOW", false)
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{
		Enabled:  enabled,
		Language: getEnvOrDefault("TTS_LANGUAGE", "en"),
		Slow:     slow,
	}, nil
}

// HistoryConfig describes conversation history storage and the context
// window consulted per request.
type HistoryConfig struct {
	DBPath     string
	WindowSize int
}

func loadHistoryConfig() (HistoryConfig, error) {
	windowSize := 5
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_WINDOW"); err != nil {
		return HistoryConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return HistoryConfig{}, fmt.Errorf("CHAT_HISTORY_WINDOW must not be negative, got %d", *override)
		}
		windowSize = *override
	}

	return HistoryConfig{
		DBPath:     strings.TrimSpace(os.Getenv("DB_PATH")),
		WindowSize: windowSize,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

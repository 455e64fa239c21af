package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr       string
	CORSOrigin string
	// Remote label backend
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	LabelTimeout  time.Duration
	// Redis label cache - disabled when RedisURL is empty
	RedisURL      string
	LabelCacheTTL time.Duration
	// Meilisearch - disabled when MeiliURL is empty
	MeiliURL       string
	MeiliMasterKey string
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first; variables already set in the process win.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Addr:           getenv("API_ADDR", ":8000"),
		CORSOrigin:     getenv("CORS_ORIGIN", "*"),
		OpenAIAPIKey:   strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
		OpenAIModel:    getenv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getenv("OPENAI_BASE_URL", ""),
		LabelTimeout:   time.Duration(getenvInt("LABEL_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisURL:       getenv("REDIS_URL", ""),
		LabelCacheTTL:  time.Duration(getenvInt("LABEL_CACHE_TTL_SECONDS", 86400)) * time.Second,
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
	}
}

// RemoteLabelsEnabled reports whether a credential for the remote label
// backend is configured.
func (c Config) RemoteLabelsEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

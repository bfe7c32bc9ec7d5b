// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	RefData RefDataConfig
	Session SessionConfig
	App     AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// BackendConfig describes the CRM REST backend.
type BackendConfig struct {
	URL string
	// Timeout in seconds; 0 keeps the transport default.
	Timeout int
	// AuthMode is "none", "bearer" or "cookie".
	AuthMode       string
	Token          string
	ForwardCookies []string
}

// RefDataConfig holds the geography provider and its cache.
type RefDataConfig struct {
	ProviderURL string
	Timeout     int // seconds
	CacheDriver string
	CacheDSN    string
	CacheTTL    time.Duration
}

// SessionConfig selects where per-browser UI state lives.
type SessionConfig struct {
	Store     string // "memory" or "redis"
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
	Secret    string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev bool
	// EditPrefill is "blank" or "record".
	EditPrefill string
	CSRFKey     string
	Secure      bool
}

// PrefillFromRecord reports whether edit forms start from the stored record.
func (a AppConfig) PrefillFromRecord() bool { return a.EditPrefill == "record" }

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Backend: BackendConfig{
			URL:            getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout:        getEnvInt("BACKEND_TIMEOUT", 0),
			AuthMode:       getEnv("BACKEND_AUTH", "none"),
			Token:          getEnv("BACKEND_TOKEN", ""),
			ForwardCookies: getEnvList("BACKEND_FORWARD_COOKIES"),
		},
		RefData: RefDataConfig{
			ProviderURL: getEnv("REFDATA_URL", ""),
			Timeout:     getEnvInt("REFDATA_TIMEOUT", 10),
			CacheDriver: getEnv("REFDATA_CACHE_DRIVER", "sqlite"),
			CacheDSN:    getEnv("REFDATA_CACHE_DSN", ""),
			CacheTTL:    getEnvDuration("REFDATA_CACHE_TTL", 24*time.Hour),
		},
		Session: SessionConfig{
			Store:     getEnv("SESSION_STORE", "memory"),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:   getEnvInt("REDIS_DB", 0),
			TTL:       getEnvDuration("SESSION_TTL", 12*time.Hour),
			Secret:    getEnv("SESSION_SECRET", ""),
		},
		App: AppConfig{
			Dev:         getEnvBool("DEV", true),
			EditPrefill: getEnv("EDIT_PREFILL", "blank"),
			CSRFKey:     getEnv("CSRF_KEY", ""),
			Secure:      getEnvBool("SECURE_COOKIES", false),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration parses values like "30m" or "12h".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

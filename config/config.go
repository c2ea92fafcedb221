package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

// APIConfig points at the remote listing API.
type APIConfig struct {
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
	// CacheTTL bounds how long a fetched property detail is reused.
	CacheTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	URL string
}

const (
	SessionBackendMemory   = "memory"
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
)

type SessionConfig struct {
	Backend    string
	Secret     string
	CookieName string
	Expiration string
	Secure     bool
}

func (c SessionConfig) ExpirationDuration() time.Duration {
	d, err := time.ParseDuration(c.Expiration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

type LogConfig struct {
	Level         string
	JSON          bool
	FluentEnabled bool
	FluentHost    string
	FluentPort    int
	AppName       string
}

// Load reads an optional .env file and then the process environment.
func Load(envPath ...string) *Config {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Mode:           getEnv("GIN_MODE", "release"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		API: APIConfig{
			BaseURL:      strings.TrimRight(getEnv("API_URL", "http://localhost:8000/api"), "/"),
			ImageBaseURL: getEnv("IMG_URL", ""),
			Timeout:      getEnvAsDuration("API_TIMEOUT", 15*time.Second),
			CacheTTL:     getEnvAsDuration("API_CACHE_TTL", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "propdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Session: SessionConfig{
			Backend:    getEnv("SESSION_BACKEND", SessionBackendMemory),
			Secret:     getEnv("SESSION_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE", "propdesk_session"),
			Expiration: getEnv("SESSION_EXPIRATION", "24h"),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Log: LogConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			JSON:          getEnvAsBool("LOG_JSON", false),
			FluentEnabled: getEnvAsBool("FLUENTBIT_ENABLED", false),
			FluentHost:    getEnv("FLUENTBIT_HOST", ""),
			FluentPort:    getEnvAsInt("FLUENTBIT_PORT", 24224),
			AppName:       getEnv("APP_NAME", "propdesk"),
		},
	}

	if cfg.Log.FluentEnabled && cfg.Log.FluentHost == "" {
		log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
		cfg.Log.FluentEnabled = false
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: %s=%q is not an int, using %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: %s=%q is not a bool, using %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Token store kinds
const (
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Places  PlacesConfig  `toml:"places"`
	App     AppConfig     `toml:"app"`
}

type APIConfig struct {
	BaseURL        string        `toml:"base_url"`
	WebSocketURL   string        `toml:"ws_url"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimitRPS   float64       `toml:"rate_limit_rps"`
	RateBurst      int           `toml:"rate_burst"`
}

type SessionConfig struct {
	Store          string        `toml:"store"`
	TokenFile      string        `toml:"token_file"`
	RedisURL       string        `toml:"redis_url"`
	RedisKeyPrefix string        `toml:"redis_key_prefix"`
	RedisTTL       time.Duration `toml:"redis_ttl"`
}

type PlacesConfig struct {
	GoogleMapsAPIKey string `toml:"google_maps_api_key"`
}

type AppConfig struct {
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`
	Version     string `toml:"version"`
	// Origin is the web app address invite links point at
	Origin string `toml:"origin"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api/v1",
			RequestTimeout: 30 * time.Second,
			RateLimitRPS:   10,
			RateBurst:      20,
		},
		Session: SessionConfig{
			Store:          StoreBolt,
			TokenFile:      defaultTokenFile(),
			RedisURL:       "redis://localhost:6379/0",
			RedisKeyPrefix: "turnupspot",
			RedisTTL:       7 * 24 * time.Hour,
		},
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
			Version:     "1.0.0",
			Origin:      "http://localhost:5173",
		},
	}
}

// Load reads configuration from an optional TOML file, then .env and
// the process environment. Environment values win over the file.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.API.WebSocketURL == "" {
		cfg.API.WebSocketURL = deriveWebSocketURL(cfg.API.BaseURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("TURNUP_API_URL", c.API.BaseURL)
	c.API.WebSocketURL = getEnv("TURNUP_WS_URL", c.API.WebSocketURL)
	c.API.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.API.RequestTimeout)
	c.API.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", c.API.RateLimitRPS)
	c.API.RateBurst = getEnvAsInt("RATE_BURST", c.API.RateBurst)

	c.Session.Store = strings.ToLower(getEnv("TOKEN_STORE", c.Session.Store))
	c.Session.TokenFile = getEnv("TOKEN_FILE", c.Session.TokenFile)
	c.Session.RedisURL = getEnv("REDIS_URL", c.Session.RedisURL)
	c.Session.RedisKeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Session.RedisKeyPrefix)
	c.Session.RedisTTL = getEnvAsDuration("REDIS_TOKEN_TTL", c.Session.RedisTTL)

	c.Places.GoogleMapsAPIKey = getEnv("GOOGLE_MAPS_API_KEY", c.Places.GoogleMapsAPIKey)

	c.App.Environment = getEnv("APP_ENV", c.App.Environment)
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	c.App.Version = getEnv("APP_VERSION", c.App.Version)
	c.App.Origin = getEnv("TURNUP_APP_URL", c.App.Origin)
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("TURNUP_API_URL is required")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("TURNUP_API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}

	switch c.Session.Store {
	case StoreBolt:
		if c.Session.TokenFile == "" {
			return fmt.Errorf("TOKEN_FILE is required for the bolt token store")
		}
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis token store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q (want bolt, redis or memory)", c.Session.Store)
	}

	o, err := url.Parse(c.App.Origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return fmt.Errorf("TURNUP_APP_URL must be an absolute URL, got %q", c.App.Origin)
	}

	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// deriveWebSocketURL maps http(s)://host/api/v1 to ws(s)://host/api/v1
func deriveWebSocketURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String()
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".turnupspot", "session.db")
	}
	return filepath.Join(home, ".turnupspot", "session.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

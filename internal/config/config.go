package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	AutoMigrate bool
	LogLevel    string
	ReadmePath  string

	Auth0Domain      string
	Algorithms       []string
	APIAudience      string
	JWKSCacheTTL     time.Duration
	JWKSFetchTimeout time.Duration

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:               envDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		AutoMigrate:            envBoolDefault("AUTO_MIGRATE", false),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		ReadmePath:             envDefault("README_PATH", "README.md"),
		Auth0Domain:            strings.TrimSpace(os.Getenv("AUTH0_DOMAIN")),
		Algorithms:             envList("ALGORITHMS"),
		APIAudience:            strings.TrimSpace(os.Getenv("API_AUDIENCE")),
		JWKSCacheTTL:           envDurationDefault("AUTH0_JWKS_CACHE_TTL", 5*time.Minute),
		JWKSFetchTimeout:       envDurationDefault("AUTH0_JWKS_TIMEOUT", 5*time.Second),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitFailClosed:    envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if err := c.ValidateAuth(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateAuth covers only the identity provider settings, for tools that
// never verify tokens.
func (c Config) ValidateAuth() error {
	var errs []error
	if c.Auth0Domain == "" {
		errs = append(errs, errors.New("AUTH0_DOMAIN is required"))
	}
	if len(c.Algorithms) == 0 {
		errs = append(errs, errors.New("ALGORITHMS is required"))
	}
	if c.APIAudience == "" {
		errs = append(errs, errors.New("API_AUDIENCE is required"))
	}
	if c.JWKSFetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("AUTH0_JWKS_TIMEOUT must be positive, got %s", c.JWKSFetchTimeout))
	}
	return errors.Join(errs...)
}

func (c Config) Issuer() string {
	return "https://" + c.Auth0Domain + "/"
}

func (c Config) JWKSURL() string {
	return "https://" + c.Auth0Domain + "/.well-known/jwks.json"
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

// envDurationDefault accepts Go durations ("90s") or bare seconds ("90").
// Zero is kept so callers can use it to switch a feature off.
func envDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return def
		}
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

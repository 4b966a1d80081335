package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Cookie   CookieConfig
	TMDB     TMDBConfig
	Cache    CacheConfig
	Avatars  AvatarConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	CleanupInterval    time.Duration
	RateLimitPerMinute int
}

// CookieConfig controls the refresh token cookie
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite string
}

type TMDBConfig struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// CacheConfig enables Redis caching of metadata responses when RedisURL is set
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// AvatarConfig points at the S3-compatible bucket holding avatar images
type AvatarConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	RootPrefix    string
	PublicBaseURL string
}

// EmailConfig enables welcome emails via SES when FromAddress is set
type EmailConfig struct {
	FromAddress string
	AWSRegion   string
	AppURL      string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "marquee"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:          jwtSecret,
			AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 10*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 15*24*time.Hour),
			CleanupInterval:    getEnvAsDuration("TOKEN_CLEANUP_INTERVAL", 1*time.Hour),
			RateLimitPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		},
		Cookie: CookieConfig{
			Domain:   getEnv("COOKIE_DOMAIN", ""),
			Secure:   getEnvAsBool("COOKIE_SECURE", true),
			SameSite: strings.ToLower(getEnv("COOKIE_SAMESITE", "none")),
		},
		TMDB: TMDBConfig{
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			APIKey:   getEnv("TMDB_API_KEY", ""),
			Language: getEnv("TMDB_LANGUAGE", "en-US"),
			Timeout:  getEnvAsDuration("TMDB_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		Avatars: AvatarConfig{
			Bucket:        getEnv("AVATAR_BUCKET", ""),
			Region:        getEnv("AVATAR_REGION", "us-east-1"),
			Endpoint:      getEnv("AVATAR_ENDPOINT", ""),
			AccessKey:     getEnv("AVATAR_ACCESS_KEY", ""),
			SecretKey:     getEnv("AVATAR_SECRET_KEY", ""),
			RootPrefix:    getEnv("AVATAR_ROOT_PREFIX", "Netflix Avatars"),
			PublicBaseURL: strings.TrimRight(getEnv("AVATAR_PUBLIC_BASE_URL", ""), "/"),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM", ""),
			AWSRegion:   getEnv("EMAIL_AWS_REGION", "us-east-1"),
			AppURL:      getEnv("APP_URL", "http://localhost:5173"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.TMDB.APIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := validateSameSite(cfg.Cookie); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// validateSameSite rejects unknown modes and SameSite=None without Secure,
// which browsers drop silently
func validateSameSite(c CookieConfig) error {
	switch c.SameSite {
	case "strict", "lax":
		return nil
	case "none":
		if !c.Secure {
			return fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
		}
		return nil
	default:
		return fmt.Errorf("COOKIE_SAMESITE must be one of strict, lax, none (got %q)", c.SameSite)
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Enabled reports whether avatar listing has a bucket to read from
func (c *AvatarConfig) Enabled() bool {
	return c.Bucket != ""
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	originsStr := getEnv("ALLOWED_ORIGINS", "")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	if env == "production" {
		return []string{}
	}

	// Development: allow local frontends
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}

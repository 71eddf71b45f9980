package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting read from the environment (.env is optional).
type Config struct {
	Port     string
	AppName  string
	LogLevel string

	DBDriver    string // postgres, mysql, sqlite
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBTimeZone  string

	JWTSecret string

	RedisAddress  string
	RedisPassword string
	LockTTL       time.Duration

	AllowedOrigins  string
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitBytes  int

	// DefaultRegion is the ISO region used to parse phone numbers without a country prefix.
	DefaultRegion string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Port:     envString("PORT", "3000"),
		AppName:  envString("APP_NAME", "Brass Inventory API v1.0"),
		LogLevel: envString("LOG_LEVEL", "info"),

		DBDriver:    strings.ToLower(envString("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      envString("DB_HOST", "localhost"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      envString("DB_NAME", "brass_inventory"),
		DBPort:      envString("DB_PORT", "5432"),
		DBTimeZone:  envString("DB_TIMEZONE", "Asia/Kolkata"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LockTTL:       time.Duration(envInt("LOCK_TTL_SECONDS", 30)) * time.Second,

		AllowedOrigins:  envString("ALLOWED_ORIGINS", "*"),
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		BodyLimitBytes:  envInt("BODY_LIMIT_MB", 4) * 1024 * 1024,

		DefaultRegion: envString("DEFAULT_REGION", "IN"),
	}
	return cfg
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

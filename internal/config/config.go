package config

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string // empty: use the migrations embedded in the binary

	// Redis (optional, enables the login throttle)
	RedisURL string

	// JWT
	JWTSecret string
	TokenTTL  time.Duration

	// Reporting
	LeaderboardSize int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             getEnvOrDefault("ENV", "development"),
		DatabaseURL:     mustGetEnv("DATABASE_URL"),
		MigrationsDir:   getEnvOrDefault("MIGRATIONS_DIR", ""),
		RedisURL:        getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:       mustGetEnv("JWT_SECRET"),
		TokenTTL:        time.Duration(getEnvAsIntOrDefault("TOKEN_TTL_HOURS", 48)) * time.Hour,
		LeaderboardSize: getEnvAsIntOrDefault("LEADERBOARD_SIZE", 10),
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 48 * time.Hour
	}
	if cfg.LeaderboardSize <= 0 || cfg.LeaderboardSize > 100 {
		cfg.LeaderboardSize = 10
	}

	return cfg
}

// MigrationsFS returns the migration source: MigrationsDir when set,
// otherwise embedded.
func (c *Config) MigrationsFS(embedded fs.FS) fs.FS {
	if c.MigrationsDir == "" {
		return embedded
	}
	return os.DirFS(c.MigrationsDir)
}

// SecureCookies reports whether session cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset.
const DevJWTSecret = "dev-secret"

type Config struct {
	ServerPort string

	AuthMode           string
	SharedUsername     string
	SharedPasswordHash string
	SharedPassword     string
	SharedTokenTTL     time.Duration
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CookieSecure       bool

	CORSAllowedOrigins []string

	StorageDriver string
	DataFile      string
	AuthFile      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SQLitePath    string

	StaticDir string
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("⚠️  No .env file found, using system environment variables")
	}

	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "3001"),

		AuthMode:           getEnv("AUTH_MODE", "account"),
		SharedUsername:     getEnv("SHARED_USERNAME", "admin"),
		SharedPasswordHash: getEnv("SHARED_PASSWORD_HASH", ""),
		SharedPassword:     getEnv("SHARED_PASSWORD", ""),
		SharedTokenTTL:     getDuration("SHARED_TOKEN_TTL", 12*time.Hour),
		JWTSecret:          getEnv("JWT_SECRET", DevJWTSecret),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CookieSecure:       getBool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		StorageDriver: getEnv("STORAGE_DRIVER", "file"),
		DataFile:      getEnv("DATA_FILE", "data.json"),
		AuthFile:      getEnv("AUTH_FILE", "auth.json"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "kanban_user"),
		DBPassword:    getEnv("DB_PASSWORD", "kanban_pass"),
		DBName:        getEnv("DB_NAME", "kanban_db"),
		SQLitePath:    getEnv("SQLITE_PATH", "kanban.db"),

		StaticDir: getEnv("STATIC_DIR", "dist"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// PostgresDSN builds the connection string for the postgres storage driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		log.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return d
}

func getBool(key string, defaultVal bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid boolean, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return b
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Monitor  MonitorConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type MonitorConfig struct {
	// CronSecret guards the internal cron endpoint. When empty the
	// check is skipped; acceptable only for local development.
	CronSecret string
	Deadline   time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	tokenTTLHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	monitorDeadline, _ := strconv.Atoi(getEnv("MONITOR_DEADLINE_SECONDS", "300"))

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "neighborly.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  time.Duration(tokenTTLHours) * time.Hour,
		},
		Monitor: MonitorConfig{
			CronSecret: getEnv("CRON_SECRET", ""),
			Deadline:   time.Duration(monitorDeadline) * time.Second,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

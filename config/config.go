package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Twilio   TwilioConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	AppEnv      string
	Port        string
	CORSOrigins []string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

type JobsConfig struct {
	Enabled      bool
	ReminderCron string
	OverdueCron  string
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

// LoadEnv builds the configuration from the environment. Call godotenv.Load
// first to pick up a .env file.
func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:      getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", ""),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			URL:             getEnv("DB_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ADDR", "") != "",
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Twilio: TwilioConfig{
			AccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber:    getEnv("TWILIO_PHONE_NUMBER", ""),
			WhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		},
		Jobs: JobsConfig{
			Enabled:      getEnvBool("JOBS_ENABLED", true),
			ReminderCron: getEnv("REMINDER_CRON", "0 9 * * *"),
			OverdueCron:  getEnv("OVERDUE_CRON", "5 0 * * *"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}

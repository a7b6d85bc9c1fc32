package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type LogConfig struct {
	Level     string
	Format    string
	Component string
	Source    bool
}

type Config struct {
	App struct {
		ENV string
	}

	Log LogConfig

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Host           string
		Port           string
		AllowedOrigins []string
	}

	JWT struct {
		Secret string
	}

	Match struct {
		BioWeight     float64
		MoodWeight    float64
		DeferredDelay time.Duration
	}

	Chat struct {
		Milestone    int64
		HistoryLimit int
		CountTTL     time.Duration
	}

	Freeze struct {
		// Units is hours in production and minutes everywhere else.
		Units int
	}
}

// IsProduction reports whether the service runs with production timings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.ENV, "production")
}

// New loads configuration from the environment. A .env file in the working
// directory is read first when present, and CONFIG_FILE may point at a YAML
// file whose keys use the same names as the environment variables.
func New() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		// a missing or broken file falls back to env + defaults
		_ = v.ReadInConfig()
	}

	cfg := &Config{}

	cfg.App.ENV = v.GetString("APP_ENV")

	// Logger
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
	cfg.Log.Component = v.GetString("LOG_COMPONENT")
	cfg.Log.Source = isTruthy(v.GetString("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.DSN = v.GetString("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = v.GetString("MYSQL_DSN")
	}
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	// gRPC
	cfg.GRPC.Host = v.GetString("GRPC_HOST")
	cfg.GRPC.Port = v.GetString("GRPC_PORT")

	// HTTP
	cfg.HTTP.Host = v.GetString("HTTP_HOST")
	cfg.HTTP.Port = v.GetString("HTTP_PORT")
	cfg.HTTP.AllowedOrigins = splitList(v.GetString("HTTP_ALLOWED_ORIGINS"))

	cfg.JWT.Secret = v.GetString("JWT_SECRET")

	// Matching
	cfg.Match.BioWeight = v.GetFloat64("MATCH_BIO_WEIGHT")
	cfg.Match.MoodWeight = v.GetFloat64("MATCH_MOOD_WEIGHT")
	cfg.Match.DeferredDelay = v.GetDuration("MATCH_DEFERRED_DELAY")

	// Chat
	cfg.Chat.Milestone = v.GetInt64("CHAT_MILESTONE")
	cfg.Chat.HistoryLimit = v.GetInt("CHAT_HISTORY_LIMIT")
	cfg.Chat.CountTTL = v.GetDuration("CHAT_COUNT_TTL")

	cfg.Freeze.Units = v.GetInt("FREEZE_UNITS")

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_COMPONENT", "lovetown")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "root")
	v.SetDefault("DB_NAME", "lovetown")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GRPC_HOST", "127.0.0.1")
	v.SetDefault("GRPC_PORT", "50051")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("HTTP_ALLOWED_ORIGINS", "http://localhost:5173")

	v.SetDefault("MATCH_BIO_WEIGHT", 5.0)
	v.SetDefault("MATCH_MOOD_WEIGHT", 3.0)
	v.SetDefault("MATCH_DEFERRED_DELAY", "1m")

	v.SetDefault("CHAT_MILESTONE", 100)
	v.SetDefault("CHAT_HISTORY_LIMIT", 100)
	v.SetDefault("CHAT_COUNT_TTL", "1h")

	v.SetDefault("FREEZE_UNITS", 24)
}

func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	case "sqlite":
		return cfg.DB.Name + ".db"
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

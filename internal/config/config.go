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
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		Debug    bool
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
		Host         string
		Port         string
		SecureCookie bool
	}

	JWT struct {
		Secret     string
		Algorithm  string
		MailTTL    time.Duration
		AccessTTL  time.Duration
		RefreshTTL time.Duration
	}

	Mail struct {
		Enabled  bool
		Host     string
		Port     int
		Username string
		Password string
		From     string
		FromName string
		StartTLS bool
	}

	Search struct {
		Backend   string
		Addresses []string
		Username  string
		Password  string
	}

	Audit struct {
		Dir           string
		RotationMB    int
		RetentionDays int
	}

	Verification struct {
		ConsumeOnConfirm bool
	}

	Admin struct {
		MasterKey string
	}
}

// New builds the configuration from the process environment. A .env file in
// the working directory, when present, is loaded first and never overrides
// variables that are already set.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.Debug = isTruthy(os.Getenv("DB_DEBUG"))
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASS", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "nameless")

		switch cfg.DB.Driver {
		case "postgres":
			cfg.DB.Port = getEnvDefault("DB_PORT", "5432")
			cfg.DB.DSN = fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
			)
		case "sqlite":
			cfg.DB.DSN = cfg.DB.Name + ".db"
		default:
			cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
			cfg.DB.DSN = fmt.Sprintf(
				"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true",
				cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
			)
		}
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC (health only)
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8000")
	cfg.HTTP.SecureCookie = isTruthy(getEnvDefault("COOKIE_SECURE", "false"))

	// Tokens
	cfg.JWT.Secret = getEnvDefault("JWT_SECRET", "change-me")
	cfg.JWT.Algorithm = getEnvDefault("JWT_ALGORITHM", "HS256")
	cfg.JWT.MailTTL = time.Duration(getEnvInt("MAIL_TOKEN_EXPIRE_SECONDS", 300)) * time.Second
	cfg.JWT.AccessTTL = time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute
	cfg.JWT.RefreshTTL = time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 30)) * 24 * time.Hour

	// SMTP
	cfg.Mail.Enabled = isTruthy(getEnvDefault("SMTP_ENABLED", "false"))
	cfg.Mail.Host = getEnvDefault("SMTP_HOST", "localhost")
	cfg.Mail.Port = getEnvInt("SMTP_PORT", 587)
	cfg.Mail.Username = getEnvDefault("SMTP_USER", "")
	cfg.Mail.Password = getEnvDefault("SMTP_PASSWORD", "")
	cfg.Mail.From = getEnvDefault("SMTP_FROM", "no-reply@nameless.local")
	cfg.Mail.FromName = getEnvDefault("SMTP_FROM_NAME", "NAMELESS PROJECT")
	cfg.Mail.StartTLS = isTruthy(getEnvDefault("SMTP_STARTTLS", "true"))

	// Secondary index: "elastic" or "memory"
	cfg.Search.Backend = strings.ToLower(getEnvDefault("SEARCH_BACKEND", "elastic"))
	esHost := getEnvDefault("ES_HOST", "localhost")
	esPort := getEnvDefault("ES_PORT", "9200")
	cfg.Search.Addresses = splitList(getEnvDefault("ES_ADDRESSES", fmt.Sprintf("http://%s:%s", esHost, esPort)))
	cfg.Search.Username = getEnvDefault("ES_USER", "")
	cfg.Search.Password = getEnvDefault("ES_PASSWORD", "")

	// Audit logs
	cfg.Audit.Dir = getEnvDefault("AUDIT_DIR", "logs")
	cfg.Audit.RotationMB = getEnvInt("ROTATION_SIZE", 10)
	cfg.Audit.RetentionDays = getEnvInt("RETENTION_TIME_DAYS", 30)

	cfg.Verification.ConsumeOnConfirm = isTruthy(os.Getenv("VERIFICATION_CONSUME_ON_CONFIRM"))

	cfg.Admin.MasterKey = os.Getenv("MASTER_KEY")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
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

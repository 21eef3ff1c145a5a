package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Email     EmailConfig
	OTP       OTPConfig
	Reset     ResetConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	FrontendURL string
	CORSOrigins []string
	UploadsDir  string
}

type DatabaseConfig struct {
	Driver   string // "mongo" or "postgres"
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	MongoURL string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Configured reports whether enough SMTP settings exist to send real mail.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

type OTPConfig struct {
	ExpirySeconds      int
	ResendAfterSeconds int
	MaxRetries         int
	Length             int
}

func (c OTPConfig) Expiry() time.Duration {
	return time.Duration(c.ExpirySeconds) * time.Second
}

func (c OTPConfig) ResendAfter() time.Duration {
	return time.Duration(c.ResendAfterSeconds) * time.Second
}

type ResetConfig struct {
	ExpiryMinutes int
}

func (c ResetConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
	Burst         int
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "InstaMakaan")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("DB_DRIVER", "mongo")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "instamakaan")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OTP_EXPIRY_SECONDS", 120)
	v.SetDefault("OTP_RESEND_AFTER_SECONDS", 30)
	v.SetDefault("OTP_MAX_RETRIES", 5)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("RESET_TOKEN_EXPIRY_MINUTES", 15)
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	if _, err := os.Stat(".env"); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			FrontendURL: strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
			UploadsDir:  v.GetString("UPLOADS_DIR"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MongoURL: v.GetString("MONGO_URL"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			ExpirySeconds:      v.GetInt("OTP_EXPIRY_SECONDS"),
			ResendAfterSeconds: v.GetInt("OTP_RESEND_AFTER_SECONDS"),
			MaxRetries:         v.GetInt("OTP_MAX_RETRIES"),
			Length:             v.GetInt("OTP_LENGTH"),
		},
		Reset: ResetConfig{
			ExpiryMinutes: v.GetInt("RESET_TOKEN_EXPIRY_MINUTES"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.Email.From == "" {
		config.Email.From = config.Email.User
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// config.go reads the environment into a Config
package main

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key"

type Config struct {
	Env  string
	Port string

	DBDriver      string // sqlite | postgres | mongo
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string
	CacheTTL    time.Duration

	MailAPIURL  string
	MailAPIKey  string
	MailFrom    string
	NotifyEmail string

	AdminEmail    string
	AdminPassword string
	SeedFile      string
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
}

func loadConfig() (Config, error) {
	cfg := Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnv("PORT", "5000"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:   getEnv("DATABASE_URL", "portfolio.db"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "portfolio"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS",
			"http://localhost:3000,http://localhost:5173")),
		MailAPIURL:    getEnv("MAIL_API_URL", "https://api.resend.com/emails"),
		MailAPIKey:    os.Getenv("MAIL_API_KEY"),
		MailFrom:      getEnv("MAIL_FROM", "Portfolio Contact <onboarding@resend.dev>"),
		NotifyEmail:   os.Getenv("CONTACT_NOTIFY_EMAIL"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedFile:      os.Getenv("SEED_FILE"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return cfg, errors.New("JWT_TTL: " + err.Error())
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "5m")); err != nil {
		return cfg, errors.New("CACHE_TTL: " + err.Error())
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "mongo":
	default:
		return cfg, errors.New("DB_DRIVER must be one of sqlite, postgres, mongo")
	}
	if cfg.Env == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return cfg, errors.New("JWT_SECRET must be set in prod")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

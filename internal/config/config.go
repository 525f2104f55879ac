package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Discord
	DiscordWebhookURL string

	// Outbound calls share one timeout budget
	OutboundTimeout time.Duration

	// Inbound throttling on the lead and contact routes, 0 disables
	APIRateLimitPerMin int

	// Take the client address from X-Forwarded-For / X-Real-IP
	TrustProxyHeaders bool

	// Persona and canned texts, empty means the embedded default
	ProfilePath string

	// Logging
	LogLevel string
	LogFile  string

	// SMTP (dev mode when host or user is empty)
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	NotifyEmail string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		DiscordWebhookURL:    mustGetEnv("DISCORD_WEBHOOK_URL", "DISCORD_WEBHOOK"),
		OutboundTimeout:      time.Duration(getEnvAsIntOrDefault("OUTBOUND_TIMEOUT_SECONDS", 20)) * time.Second,
		APIRateLimitPerMin:   getEnvAsIntOrDefault("API_RATE_LIMIT_PER_MINUTE", 30),
		TrustProxyHeaders:    getEnvAsBoolOrDefault("TRUST_PROXY_HEADERS", false),
		ProfilePath:          getEnvOrDefault("PROFILE_PATH", ""),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:              getEnvOrDefault("LOG_FILE", ""),
		SMTPHost:             getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:             getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:             getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:             getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:             getEnvOrDefault("SMTP_FROM", "noreply@salesbot.local"),
		NotifyEmail:          getEnvOrDefault("NOTIFY_EMAIL", ""),
	}

	if cfg.OutboundTimeout <= 0 {
		cfg.OutboundTimeout = 20 * time.Second
	}
	if cfg.GeminiConcurrentReqs <= 0 {
		cfg.GeminiConcurrentReqs = 1
	}

	return cfg
}

// mustGetEnv returns the first non-empty variable among keys and panics when none is set.
func mustGetEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	panic(fmt.Sprintf("required environment variable %s is not set", keys[0]))
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

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config holds everything read from the environment. Load never fails;
// components that need a missing value surface a ConfigError when used.
type Config struct {
	Port string

	GroqAPIKey    string
	GroqModel     string
	AITemperature float64
	MaxAITokens   int

	GmailCredentials string // OAuth client secret file
	GmailToken       string // stored user token

	AMQPURL string

	UploadDir       string
	IntervalSeconds int // default send throttle
}

func Load() Config {
	return Config{
		Port:             getenv("PORT", "8080"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GroqModel:        getenv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		AITemperature:    getfloat("AI_TEMPERATURE", 0.7),
		MaxAITokens:      getint("MAX_AI_TOKENS", 1024),
		GmailCredentials: getenv("GMAIL_CREDENTIALS", "credentials.json"),
		GmailToken:       getenv("GMAIL_TOKEN", "token.json"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		UploadDir:        getenv("UPLOAD_DIR", "uploads"),
		IntervalSeconds:  getint("SEND_INTERVAL_SECONDS", 120),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

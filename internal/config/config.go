package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-wide configuration, loaded once at startup and
// passed by reference into services. It is never mutated after Load.
type Config struct {
	ArifPayAPIKey         string
	ArifPayEndpoint       string
	ArifPayStatusEndpoint string

	SuccessURL string
	CancelURL  string
	ErrorURL   string
	NotifyURL  string

	BeneficiaryAccount string
	BeneficiaryBank    string

	Port        string
	DatabaseURL string
	RedisURL    string
}

// Load reads configuration from environment variables, honoring a local .env
// file when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := &Config{
		ArifPayAPIKey:         os.Getenv("ARIFPAY_API_KEY"),
		ArifPayEndpoint:       os.Getenv("ARIFPAY_ENDPOINT"),
		ArifPayStatusEndpoint: getEnv("ARIFPAY_STATUS_ENDPOINT", "https://gateway.arifpay.org/api/checkout/session"),
		SuccessURL:            os.Getenv("ARIFPAY_SUCCESS_URL"),
		CancelURL:             os.Getenv("ARIFPAY_CANCEL_URL"),
		ErrorURL:              os.Getenv("ARIFPAY_ERROR_URL"),
		NotifyURL:             os.Getenv("ARIFPAY_NOTIFY_URL"),
		BeneficiaryAccount:    os.Getenv("ARIFPAY_ACCOUNT"),
		BeneficiaryBank:       os.Getenv("ARIFPAY_BANK"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"ARIFPAY_API_KEY", cfg.ArifPayAPIKey},
		{"ARIFPAY_ENDPOINT", cfg.ArifPayEndpoint},
		{"ARIFPAY_SUCCESS_URL", cfg.SuccessURL},
		{"ARIFPAY_CANCEL_URL", cfg.CancelURL},
		{"ARIFPAY_ERROR_URL", cfg.ErrorURL},
		{"ARIFPAY_NOTIFY_URL", cfg.NotifyURL},
		{"ARIFPAY_ACCOUNT", cfg.BeneficiaryAccount},
		{"ARIFPAY_BANK", cfg.BeneficiaryBank},
	}
	for _, v := range required {
		if v.value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", v.name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

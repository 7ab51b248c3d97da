package config

import (
	"os"
	"strconv"
)

// Config collects every knob the server reads from the environment. All of
// them have workable defaults except DatabaseURL and JWTSecret, which main
// refuses to start without.
type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	AllowOrigins    string
	SharedAdminID   int
	OCREndpoint     string
	PaymentEndpoint string
	NotifyEndpoint  string
}

func Load() Config {
	return Config{
		Addr:            getenv("PHARMACY_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowOrigins:    getenv("ALLOW_ORIGINS", "*"),
		SharedAdminID:   getenvInt("SHARED_ADMIN_ID", 1),
		OCREndpoint:     os.Getenv("OCR_ENDPOINT"),
		PaymentEndpoint: os.Getenv("PAYMENT_ENDPOINT"),
		NotifyEndpoint:  os.Getenv("NOTIFY_ENDPOINT"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

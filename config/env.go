package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV nạp biến môi trường từ file .env (nếu có)
func LoadENV() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TokenTTL trả về thời hạn của token, mặc định là 7 ngày
func TokenTTL() time.Duration {
	ttl := os.Getenv("TOKEN_TTL")
	if ttl == "" {
		return 7 * 24 * time.Hour
	}

	d, err := time.ParseDuration(ttl)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	MongoURI     string
	DatabaseName string
	RedisAddr    string
	JWTSecret    []byte
	HMACSecret   []byte
	TokenTTL     time.Duration
	UploadDir    string
}

// Load reads .env if present, then the environment, with defaults for local dev.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	return Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DATABASE_NAME", "campingdb"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:    []byte(getEnv("ACCESS_TOKEN_SECRET", "dev_only_secret")),
		HMACSecret:   []byte(getEnv("RECEIPT_HMAC_SECRET", "dev_only_receipt_secret")),
		TokenTTL:     time.Hour,
		UploadDir:    getEnv("UPLOAD_DIR", "static/classpic"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	FirebaseProject   string
	Environment       string
	GuestTokenSecret  string
	GuestTokenExpiry  int64
	GuestMessageLimit int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:       getEnv("ENVIRONMENT", "development"),
		GuestTokenSecret:  getEnv("GUEST_TOKEN_SECRET", "your-secret-key"),
		GuestTokenExpiry:  getEnvAsInt64("GUEST_TOKEN_EXPIRY", 24*60*60), // 24 hours
		GuestMessageLimit: getEnvAsInt("GUEST_MESSAGE_LIMIT", 5),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

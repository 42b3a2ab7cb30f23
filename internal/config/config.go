package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress       string
	RedisChannelPrefix string

	// JWT configuration
	JWTSecret string

	// Collaboration configuration
	CurrentUserID    string
	CollabDebounce   time.Duration
	CollabHighlight  time.Duration
	PresenceTTL      time.Duration
	PresenceSweepGap time.Duration

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = generateRandomSecret(32) // Generate a 32-byte random secret if not declared
		log.Println("Generated random JWT secret")
	}

	AppConfig = Config{
		ServerPort:         getEnv("PORT", "8080"),
		Environment:        getEnv("ENV", "development"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "nexussync"),
		RedisAddress:       getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "nexussync:collab"),
		JWTSecret:          jwtSecret,
		CurrentUserID:      getEnv("CURRENT_USER_ID", "user1"),
		CollabDebounce:     getEnvMillis("COLLAB_DEBOUNCE_MS", 500),
		CollabHighlight:    getEnvMillis("COLLAB_HIGHLIGHT_MS", 2000),
		PresenceTTL:        getEnvMillis("PRESENCE_TTL_MS", 10*60*1000),
		PresenceSweepGap:   getEnvMillis("PRESENCE_SWEEP_MS", 60*1000),
		FrontendAddress:    getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvMillis reads a millisecond duration, falling back on bad input
func getEnvMillis(key string, defaultMillis int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultMillis) * time.Millisecond
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		log.Printf("Warning: invalid %s=%q, using default", key, value)
		return time.Duration(defaultMillis) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// generateRandomSecret generates a random secret of the specified length
func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secret := make([]byte, length)
	for i := range secret {
		secret[i] = charset[random(len(charset))]
	}
	return string(secret)
}

// random returns a random integer between 0 and n-1
func random(n int) int {
	return int(time.Now().UnixNano()) % n
}

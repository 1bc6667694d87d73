package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type Storage struct {
	Driver   string
	FilePath string
	// MigrationsPath is only read by the postgres driver.
	MigrationsPath string
}

type Config struct {
	ServerPort     int
	APIBaseURL     string
	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	Storage        Storage
	DB             DB
	Redis          Redis
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	MaxUploadSize  int64
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration %s=%q, using %s", key, value, fallback)
	}
	return fallback
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "mobiblog"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
		Channel:  getEnv("REDIS_CHANNEL", "mobiblog:storage"),
	}
}

func LoadStorage() Storage {
	return Storage{
		Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
		FilePath:       getEnv("STORAGE_FILE_PATH", "data/local_storage.json"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_create_local_storage.sql"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:     getEnvAsInt("SERVER_PORT", 8080),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionTTL:     getEnvDuration("SESSION_TTL", 0),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		Storage:        LoadStorage(),
		DB:             LoadDB(),
		Redis:          LoadRedis(),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		MaxUploadSize:  parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "16777216")),
	}
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 16 * 1024 * 1024
	}
	return size
}

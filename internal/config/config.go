package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Remote RemoteConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogFilePath string
	// SessionCachePath persists the auth session between runs. Empty disables
	// persistence.
	SessionCachePath string
}

type RemoteConfig struct {
	// BaseURL is the root of the hosted backend, e.g. https://xyz.supabase.co
	BaseURL string
	// AnonKey is sent as the apikey header on every request.
	AnonKey        string
	TimeoutSeconds int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:             getEnv("APP_PORT", "3000"),
			Environment:      getEnv("GO_ENV", "development"),
			LogFilePath:      getEnv("LOG_FILE_PATH", "notas.log"),
			SessionCachePath: getEnv("SESSION_CACHE_PATH", ".notas-session"),
		},
		Remote: RemoteConfig{
			BaseURL:        getEnv("SUPABASE_URL", "http://localhost:54321"),
			AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			TimeoutSeconds: getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Keys   APIKeys
	Engine EngineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EngineLogFilePath  string
	CorsAllowedOrigins string
	RedisURL           string
	SessionTTLMinutes  int
}

type APIKeys struct {
	Groq            string
	LlamaCloud      string
	ChatEventsTopic string // Topic for chat lifecycle events
}

type EngineConfig struct {
	GroqBaseURL       string
	GroqModel         string
	LlamaCloudBaseURL string
	IndexName         string
	ProjectName       string
	OrganizationID    string
	RetrievalTopK     int
}

// RequiredEnv lists the settings the pipeline cannot run without. Startup
// refuses to boot when any of them is unset; the status endpoint reports
// their presence.
var RequiredEnv = []string{
	"GROQ_API_KEY",
	"LLAMA_CLOUD_API_KEY",
	"LLAMA_CLOUD_INDEX_NAME",
	"LLAMA_CLOUD_PROJECT_NAME",
	"LLAMA_CLOUD_ORG_ID",
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			EngineLogFilePath:  getEnv("ENGINE_LOG_FILE_PATH", "logs/engine.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", ""),
			SessionTTLMinutes:  getEnvAsInt("SESSION_TTL_MINUTES", 60),
		},
		Keys: APIKeys{
			Groq:            getEnv("GROQ_API_KEY", ""),
			LlamaCloud:      getEnv("LLAMA_CLOUD_API_KEY", ""),
			ChatEventsTopic: getEnv("CHAT_EVENTS_TOPIC_NAME", "CHAT_EVENTS"),
		},
		Engine: EngineConfig{
			GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			GroqModel:         getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			LlamaCloudBaseURL: getEnv("LLAMA_CLOUD_BASE_URL", "https://api.cloud.llamaindex.ai"),
			IndexName:         getEnv("LLAMA_CLOUD_INDEX_NAME", ""),
			ProjectName:       getEnv("LLAMA_CLOUD_PROJECT_NAME", ""),
			OrganizationID:    getEnv("LLAMA_CLOUD_ORG_ID", ""),
			RetrievalTopK:     getEnvAsInt("RETRIEVAL_TOP_K", 5),
		},
	}
}

// MissingRequired returns the required settings absent from the environment,
// in declaration order. Empty values count as absent.
func MissingRequired() []string {
	var missing []string
	for _, key := range RequiredEnv {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// EnvPresence reports which required settings are set without exposing their
// values. Feeds the status endpoint.
func EnvPresence() map[string]bool {
	presence := make(map[string]bool, len(RequiredEnv))
	for _, key := range RequiredEnv {
		presence[key] = os.Getenv(key) != ""
	}
	return presence
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

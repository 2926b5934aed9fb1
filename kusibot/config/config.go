package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr   string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string

	// LLM backend (Ollama-compatible chat API).
	OllamaBaseURL string
	OllamaModel   string

	// External BERT intent inference service. Empty means the
	// classifier is unavailable and every turn routes to conversation.
	ClassifierURL string

	QuestionnairesPath  string
	ConfidenceThreshold float64

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func LoadConfig() Config {
	// A missing .env file is fine, the system environment still applies.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8000"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBHost:              getEnv("DB_HOST", ""),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBName:              getEnv("DB_NAME", "kusibot"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434/api"),
		OllamaModel:         getEnv("OLLAMA_MODEL", "mistral"),
		ClassifierURL:       getEnv("CLASSIFIER_URL", ""),
		QuestionnairesPath:  getEnv("QUESTIONNAIRES_PATH", "kusibot/chatbot/questionnaires/questionnaires.json"),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.5),
		MinioEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:         getEnv("MINIO_BUCKET", "kusibot-exports"),
		MinioUseSSL:         getEnv("MINIO_USE_SSL", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

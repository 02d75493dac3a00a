package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Guardrail GuardrailConfig
	Audit     AuditConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	OpsEmail   string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	// CorpusEmbeddingModel is the model id the stored vectors were produced
	// with. The query-side provider must report the same id or the request
	// fails rather than compare vectors across model spaces.
	CorpusEmbeddingModel string
	EmbeddingCacheTTL    time.Duration
	LLMProvider          string // "ollama" or "openai"
	LLMModel             string
	LLMBaseURL           string
	LLMTimeout           time.Duration
	LLMMaxRetries        int
	EmbeddingTimeout     time.Duration
	EmbeddingMaxRetries  int
}

type RetrievalConfig struct {
	TopKDefault   int
	MaxExpansions int
}

// GuardrailConfig holds the similarity thresholds. The numbers are
// deployment knobs; the ordering floor < medium < high is the contract.
type GuardrailConfig struct {
	ScoreFloor   float64
	HighScore    float64
	MediumScore  float64
	IsolationGap float64
}

type AuditConfig struct {
	Topic string
	// WriteRetries is the retry budget for persisting one audit record
	// before the failure is escalated to the ops mailbox.
	WriteRetries int
	// ReadRoles are the roles allowed to list audit records and attach to
	// the live feed.
	ReadRoles []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Knowledge Copilot"),
			OpsEmail:   getEnv("SMTP_OPS_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			CorpusEmbeddingModel: getEnv("CORPUS_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingCacheTTL:    getEnvAsDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
			LLMTimeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			LLMMaxRetries:        getEnvAsInt("LLM_MAX_RETRIES", 2),
			EmbeddingTimeout:     getEnvAsDuration("EMBEDDING_TIMEOUT", 15*time.Second),
			EmbeddingMaxRetries:  getEnvAsInt("EMBEDDING_MAX_RETRIES", 2),
		},
		Retrieval: RetrievalConfig{
			TopKDefault:   getEnvAsInt("RETRIEVAL_TOP_K", 5),
			MaxExpansions: getEnvAsInt("RETRIEVAL_MAX_EXPANSIONS", 3),
		},
		Guardrail: GuardrailConfig{
			ScoreFloor:   getEnvAsFloat("GUARDRAIL_SCORE_FLOOR", 0.30),
			HighScore:    getEnvAsFloat("GUARDRAIL_HIGH_SCORE", 0.70),
			MediumScore:  getEnvAsFloat("GUARDRAIL_MEDIUM_SCORE", 0.55),
			IsolationGap: getEnvAsFloat("GUARDRAIL_ISOLATION_GAP", 0.25),
		},
		Audit: AuditConfig{
			Topic:        getEnv("AUDIT_TOPIC_NAME", "AUDIT_RECORD_WRITE"),
			WriteRetries: getEnvAsInt("AUDIT_WRITE_RETRIES", 3),
			ReadRoles:    getEnvAsList("AUDIT_READ_ROLES", "compliance,admin"),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

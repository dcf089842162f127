package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Keys           APIKeys
	Ai             AIConfig
	Recommendation RecommendationConfig
	Catalog        CatalogConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ServiceName        string
}

type DatabaseConfig struct {
	Connection   string
	MaxOpenConns int
	MaxIdleConns int
	Verbose      bool
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Jina         string
	EmbedTopic   string // watermill topic for catalog embedding jobs
}

type AIConfig struct {
	EmbeddingProvider   string // "gemini", "ollama", "jina" or "openai"
	EmbeddingModel      string
	EmbeddingDimensions int
	OllamaBaseURL       string
	OllamaModel         string
	LLMProvider         string // "langflow", "openai", "ollama" or "none"
	LLMModel            string
	LangflowBaseURL     string
	LangflowFlowID      string
	LangflowAPIKey      string
}

type RecommendationConfig struct {
	DefaultLimit            int
	MaxLimit                int
	MaxHistory              int
	MaxViewedItems          int
	MaxCategories           int
	NormalizeScores         bool
	SessionBackend          string // "postgres", "redis" or "memory"
	SessionTTL              time.Duration
	LockTTL                 time.Duration
	LockWait                time.Duration
	EmbeddingTimeout        time.Duration
	VectorSearchTimeout     time.Duration
	ResponseTimeout         time.Duration
	SessionStoreTimeout     time.Duration
	TrendingMinRating       float64
	PreferenceHistoryWindow int
}

type CatalogConfig struct {
	FeedURL        string
	ConsumerKey    string
	ConsumerSecret string
	PageSize       int
	BatchSize      int
	// SubscribeEvents consumes catalog change events from NATS.
	SubscribeEvents bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ServiceName:        getEnv("SERVICE_NAME", "intelligent-recommendations"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			Verbose:      getEnvAsBool("DB_LOG_VERBOSE", false),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			EmbedTopic:   getEnv("EMBED_CATALOG_ITEM_TOPIC_NAME", "EMBED_CATALOG_ITEM"),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:         getEnv("LLM_PROVIDER", "langflow"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			LangflowBaseURL:     getEnv("LANGFLOW_BASE_URL", "http://localhost:7860"),
			LangflowFlowID:      getEnv("LANGFLOW_FLOW_ID", "recommendation_flow"),
			LangflowAPIKey:      getEnv("LANGFLOW_API_KEY", ""),
		},
		Recommendation: RecommendationConfig{
			DefaultLimit:            getEnvAsInt("DEFAULT_RESULT_LIMIT", 10),
			MaxLimit:                getEnvAsInt("MAX_RESULT_LIMIT", 50),
			MaxHistory:              getEnvAsInt("SESSION_MAX_HISTORY", 20),
			MaxViewedItems:          getEnvAsInt("SESSION_MAX_VIEWED_ITEMS", 50),
			MaxCategories:           getEnvAsInt("SESSION_MAX_CATEGORIES", 10),
			NormalizeScores:         getEnvAsBool("RANKING_NORMALIZE_SCORES", false),
			SessionBackend:          getEnv("SESSION_BACKEND", "postgres"),
			SessionTTL:              getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			LockTTL:                 getEnvAsDuration("SESSION_LOCK_TTL", 60*time.Second),
			LockWait:                getEnvAsDuration("SESSION_LOCK_WAIT", 10*time.Second),
			EmbeddingTimeout:        getEnvAsDuration("EMBEDDING_TIMEOUT", 10*time.Second),
			VectorSearchTimeout:     getEnvAsDuration("VECTOR_SEARCH_TIMEOUT", 5*time.Second),
			ResponseTimeout:         getEnvAsDuration("RESPONSE_TIMEOUT", 15*time.Second),
			SessionStoreTimeout:     getEnvAsDuration("SESSION_STORE_TIMEOUT", 3*time.Second),
			TrendingMinRating:       getEnvAsFloat("TRENDING_MIN_RATING", 4.0),
			PreferenceHistoryWindow: getEnvAsInt("PREFERENCE_HISTORY_WINDOW", 5),
		},
		Catalog: CatalogConfig{
			FeedURL:         getEnv("WOOCOMMERCE_URL", ""),
			ConsumerKey:     getEnv("WOOCOMMERCE_CONSUMER_KEY", ""),
			ConsumerSecret:  getEnv("WOOCOMMERCE_CONSUMER_SECRET", ""),
			PageSize:        getEnvAsInt("CATALOG_PAGE_SIZE", 100),
			BatchSize:       getEnvAsInt("CATALOG_BATCH_SIZE", 10),
			SubscribeEvents: getEnvAsBool("CATALOG_SUBSCRIBE_EVENTS", true),
		},
	}

	if hold := cfg.Recommendation.MaxLockHold(); cfg.Recommendation.LockTTL < hold {
		log.Printf("Warn: SESSION_LOCK_TTL %s is shorter than the longest lock hold %s, using %s",
			cfg.Recommendation.LockTTL, hold, hold)
		cfg.Recommendation.LockTTL = hold
	}

	return cfg
}

// MaxLockHold is the longest a request can hold a session lock: load,
// embed, vector search, respond and save, each at its timeout.
func (r RecommendationConfig) MaxLockHold() time.Duration {
	return 2*r.SessionStoreTimeout + r.EmbeddingTimeout + r.VectorSearchTimeout + r.ResponseTimeout
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("3s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	GeminiAPIKey string
	GeminiModel  string
	// EmbeddingModel is used for knowledge-base queries.
	EmbeddingModel string

	// Qdrant knowledge base
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Redis conversation-history cache; empty addr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AppEnv       string
	IsStaging    bool
	IsProduction bool
	// IsGeminiEnabled is a flag to enable/disable Gemini API usage (enum: "1" or "0")
	IsGeminiEnabled bool

	JWTSecret string
	Port      string
	DBPath    string

	// KeywordsFile points at the TOML file holding the nutrition-topic
	// classifier terms. Built-in defaults apply when the file is absent.
	KeywordsFile string

	// runtime tunables
	RateLimitWindowSeconds   int
	RateLimitCapacity        int
	UserConcurrencyLimit     int
	DuplicateWindowSeconds   int
	HistoryCacheTTLSeconds   int
	KnowledgeCacheTTLSeconds int
	KnowledgeSearchLimit     int
)

func init() {
	// .env is optional; in production everything comes from the host env.
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = os.Getenv("GEMINI_MODEL")
	if GeminiModel == "" {
		GeminiModel = "gemini-2.0-flash"
	}
	EmbeddingModel = os.Getenv("GEMINI_EMBEDDING_MODEL")
	if EmbeddingModel == "" {
		EmbeddingModel = "embedding-001"
	}

	QdrantURL = os.Getenv("QDRANT_URL")
	QdrantAPIKey = os.Getenv("QDRANT_API_KEY")
	QdrantCollection = os.Getenv("COLLECTION_NAME")
	if QdrantCollection == "" {
		QdrantCollection = "nutrition_knowledge"
	}

	RedisAddr = os.Getenv("REDIS_ADDR")
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	RedisDB = atoiOr(os.Getenv("REDIS_DB"), 0)

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	IsGeminiEnabled = os.Getenv("IS_GEMINI_ENABLED") == "1"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}
	DBPath = os.Getenv("DB_PATH")
	if DBPath == "" {
		DBPath = "app.db"
	}

	KeywordsFile = os.Getenv("KEYWORDS_FILE")
	if KeywordsFile == "" {
		KeywordsFile = "configs/keywords.toml"
	}

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserConcurrencyLimit = atoiOr(os.Getenv("USER_CONCURRENCY_LIMIT"), 2)
	DuplicateWindowSeconds = atoiOr(os.Getenv("DUPLICATE_WINDOW_SECONDS"), 45)
	HistoryCacheTTLSeconds = atoiOr(os.Getenv("HISTORY_CACHE_TTL_SECONDS"), 60)
	KnowledgeCacheTTLSeconds = atoiOr(os.Getenv("KNOWLEDGE_CACHE_TTL_SECONDS"), 600)
	KnowledgeSearchLimit = atoiOr(os.Getenv("KNOWLEDGE_SEARCH_LIMIT"), 3)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] IsGeminiEnabled=%v GeminiAPIKeyPresent=%v GeminiModel=%s", IsGeminiEnabled, GeminiAPIKey != "", GeminiModel)
	log.Printf("[config] QdrantPresent=%v collection=%s RedisAddr=%q", QdrantURL != "", QdrantCollection, RedisAddr)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

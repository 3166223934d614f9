package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/askpdf/askpdf/pkg/chunker"
)

type Config struct {
	Server     ServerConfig
	Embeddings EmbeddingsConfig
	LLM        LLMConfig
	Index      IndexConfig
	Redis      RedisConfig
	Ingest     IngestConfig
	UploadDir  string
}

type ServerConfig struct {
	Host string
	Port int
}

type EmbeddingsConfig struct {
	Provider    string // "openai" or "local"
	OpenAIKey   string
	OpenAIModel string
	LocalModel  string
	OllamaURL   string
}

type LLMConfig struct {
	Provider     string // "openai" or "anthropic"
	Model        string
	OpenAIKey    string
	AnthropicKey string
}

type IndexConfig struct {
	Backend     string // "pgvector" or "memory"
	DatabaseURL string
	Table       string
	MaxConns    int
	MinConns    int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type IngestConfig struct {
	ChunkSize int
	Overlap   int
	BatchSize int
	MaxChunks int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	chunkSize, err := getEnvInt("CHUNK_SIZE", chunker.DefaultChunkSize)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_SIZE: %w", err)
	}
	overlap, err := getEnvInt("CHUNK_OVERLAP", chunker.DefaultOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_OVERLAP: %w", err)
	}
	batchSize, err := getEnvInt("BATCH_SIZE", 128)
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_SIZE: %w", err)
	}
	maxChunks, err := getEnvInt("MAX_CHUNKS", 20000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CHUNKS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Embeddings: EmbeddingsConfig{
			Provider:    strings.ToLower(getEnv("EMBEDDINGS_PROVIDER", "openai")),
			OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIModel: getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
			LocalModel:  getEnv("LOCAL_EMBED_MODEL", "nomic-embed-text"),
			OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Model:        getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
		},
		Index: IndexConfig{
			Backend:     strings.ToLower(getEnv("VECTOR_BACKEND", "pgvector")),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			Table:       getEnv("VECTOR_TABLE", "document_vectors"),
			MaxConns:    maxConns,
			MinConns:    minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Ingest: IngestConfig{
			ChunkSize: chunkSize,
			Overlap:   overlap,
			BatchSize: batchSize,
			MaxChunks: maxChunks,
		},
		UploadDir: getEnv("UPLOAD_DIR", "data"),
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Embeddings.Provider == "openai" && c.Embeddings.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.LLM.Provider == "openai" && c.LLM.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.LLM.Provider == "anthropic" && c.LLM.AnthropicKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if c.Index.Backend == "pgvector" && c.Index.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Model returns the active embedding model name for the selected
// provider.
func (c EmbeddingsConfig) Model() string {
	if c.Provider == "local" {
		return c.LocalModel
	}
	return c.OpenAIModel
}

// Dimension derives the embedding vector dimension from the selected
// model name. It is a fixed lookup, not measured at runtime, and must
// match the dimension the persisted index was created with.
func (c EmbeddingsConfig) Dimension() int {
	if c.Provider == "local" {
		name := strings.ToLower(c.LocalModel)
		switch {
		case strings.Contains(name, "e5-small"), strings.Contains(name, "bge-small"):
			return 384
		case strings.Contains(name, "e5-base"), strings.Contains(name, "bge-base"):
			return 768
		case strings.Contains(name, "e5-large"), strings.Contains(name, "bge-large"):
			return 1024
		case strings.Contains(name, "nomic-embed-text"):
			return 768
		case strings.Contains(name, "mxbai-embed-large"):
			return 1024
		}
		return 384
	}

	if strings.Contains(strings.ToLower(c.OpenAIModel), "3-large") {
		return 3072
	}
	return 1536
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

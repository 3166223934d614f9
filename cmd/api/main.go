package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/askpdf/askpdf/internal/api"
	"github.com/askpdf/askpdf/internal/config"
	"github.com/askpdf/askpdf/internal/document"
	"github.com/askpdf/askpdf/internal/embedding"
	"github.com/askpdf/askpdf/internal/extract"
	"github.com/askpdf/askpdf/internal/ingest"
	"github.com/askpdf/askpdf/internal/llm"
	"github.com/askpdf/askpdf/internal/lock"
	"github.com/askpdf/askpdf/internal/rag"
	"github.com/askpdf/askpdf/internal/storage"
	"github.com/askpdf/askpdf/internal/vectorindex"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		slog.Error("failed to create embedding provider", "error", err)
		os.Exit(1)
	}

	llmProvider, err := newLLM(cfg)
	if err != nil {
		slog.Error("failed to create llm provider", "error", err)
		os.Exit(1)
	}

	var db *pgxpool.Pool
	var index vectorindex.Index
	switch cfg.Index.Backend {
	case "memory":
		index = vectorindex.NewMemoryIndex()
		slog.Info("using in-memory vector index")
	case "pgvector":
		db, err = newPool(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := vectorindex.NewPgVectorIndex(db, cfg.Index.Table, cfg.Embeddings.Dimension())
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure vector schema", "error", err)
			os.Exit(1)
		}
		index = pg
	default:
		slog.Error("unknown vector backend", "backend", cfg.Index.Backend)
		os.Exit(1)
	}

	// Redis is optional. Without it, per-file locking falls back to
	// in-process mutexes, which is only safe for a single instance.
	var rdb *redis.Client
	var locks lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locks = lock.NewRedisLocker(rdb, 0)
	}

	pipeline := ingest.NewPipeline(embedder, index, ingest.Options{
		ChunkSize: cfg.Ingest.ChunkSize,
		Overlap:   cfg.Ingest.Overlap,
		BatchSize: cfg.Ingest.BatchSize,
		MaxChunks: cfg.Ingest.MaxChunks,
	})

	docSvc := document.NewService(
		storage.NewLocalStorage(cfg.UploadDir),
		extract.NewPDFExtractor(),
		pipeline,
		index,
		locks,
	)
	ragPipeline := rag.NewPipeline(embedder, index, llmProvider, cfg.LLM.Model)

	handler := api.NewRouter(api.Deps{
		Documents: docSvc,
		Chat:      ragPipeline,
		DB:        db,
		Redis:     rdb,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(),
			"embeddings", cfg.Embeddings.Provider,
			"llm", cfg.LLM.Provider,
			"index", cfg.Index.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func newEmbedder(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Embeddings.Provider {
	case "openai":
		return embedding.NewOpenAIProvider(cfg.Embeddings.OpenAIKey, cfg.Embeddings.OpenAIModel), nil
	case "local":
		return embedding.NewOllamaProvider(cfg.Embeddings.OllamaURL, cfg.Embeddings.LocalModel), nil
	}
	return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.Embeddings.Provider)
}

func newLLM(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAIProvider(cfg.LLM.OpenAIKey), nil
	case "anthropic":
		return llm.NewAnthropicProvider(cfg.LLM.AnthropicKey), nil
	}
	return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.Index.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pc.MaxConns = int32(cfg.Index.MaxConns)
	pc.MinConns = int32(cfg.Index.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

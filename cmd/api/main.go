package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/hansik/backend/config"
	"github.com/pageza/hansik/backend/internal/database"
	"github.com/pageza/hansik/backend/internal/loader"
	"github.com/pageza/hansik/backend/internal/rag"
	"github.com/pageza/hansik/backend/internal/server"
	"github.com/pageza/hansik/backend/internal/service"
	"github.com/pageza/hansik/backend/internal/vectorstore"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var objects loader.ObjectOpener
	if strings.HasPrefix(cfg.DataPath, "s3://") {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		objects = s3cfg
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Redis unavailable, continuing without cache and rate limiting: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	embeddingService := service.NewEmbeddingService(service.EmbeddingOptions{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.EmbeddingModel,
		BatchSize: cfg.EmbeddingBatchSize,
	})
	var embedder service.EmbeddingServiceInterface = embeddingService
	if redisClient != nil {
		embedder = service.NewCachedEmbeddingService(embeddingService, redisClient, embeddingService.Model(), cfg.EmbeddingCacheTTL)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up vector store: %v", err)
	}

	llm := service.NewLLMService(service.LLMOptions{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
	})

	bot := rag.NewChatbot(rag.ChatbotOptions{
		Loader:   loader.New(objects),
		Embedder: embedder,
		Store:    store,
		DataPath: cfg.DataPath,
		TopK:     cfg.TopK,
	})
	if err := bot.Initialize(ctx); err != nil {
		log.Printf("Chatbot is not ready; /chat will answer 503: %v", err)
	}

	srv := server.New(cfg, bot, llm, redisClient)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func newStore(cfg *config.Config) (vectorstore.Store, error) {
	if cfg.VectorStore != "pgvector" {
		return vectorstore.NewMemoryStore(), nil
	}
	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := vectorstore.Migrate(db); err != nil {
		return nil, err
	}
	return vectorstore.NewPGVectorStore(db), nil
}

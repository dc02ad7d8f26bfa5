package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/hansik/backend/config"
	"github.com/pageza/hansik/backend/internal/api"
	"github.com/pageza/hansik/backend/internal/middleware"
	"github.com/pageza/hansik/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New wires middleware and routes. redisClient may be nil, in which case
// /chat is not rate limited.
func New(cfg *config.Config, bot api.Chatbot, llm service.LLMServiceInterface, redisClient *redis.Client) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	var chatMiddleware []gin.HandlerFunc
	if redisClient != nil && cfg.RateLimitPerHour > 0 {
		limiter := middleware.NewChatRateLimiter(redisClient, cfg.RateLimitPerHour)
		chatMiddleware = append(chatMiddleware, limiter.RateLimitMiddleware())
		log.Printf("[Server] Rate limiting /chat to %d requests per hour per client", cfg.RateLimitPerHour)
	}
	api.NewChatHandler(bot, llm).RegisterRoutes(router, chatMiddleware...)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler: router,
		},
	}
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Printf("[Server] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server. Open answer streams are
// cancelled when ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

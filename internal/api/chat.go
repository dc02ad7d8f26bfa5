package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/hansik/backend/internal/rag"
	"github.com/pageza/hansik/backend/internal/service"
)

const (
	msgQuestionRequired = "Question is required"
	msgNotReady         = "Chatbot is not ready. Please try again later."
	msgInternal         = "An internal server error occurred."
	msgGeneration       = "An error occurred while generating the response."
)

// Chatbot exposes the process-wide retriever state
type Chatbot interface {
	Ready() bool
	Retriever() (*rag.Retriever, error)
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatHandler answers questions about the recipe knowledge base
type ChatHandler struct {
	bot Chatbot
	llm service.LLMServiceInterface
}

// NewChatHandler creates a ChatHandler
func NewChatHandler(bot Chatbot, llm service.LLMServiceInterface) *ChatHandler {
	return &ChatHandler{bot: bot, llm: llm}
}

// RegisterRoutes mounts the chat and health endpoints. Extra handlers run
// before Chat, e.g. a rate limiter.
func (h *ChatHandler) RegisterRoutes(router gin.IRoutes, chatMiddleware ...gin.HandlerFunc) {
	router.POST("/chat", append(chatMiddleware, h.Chat)...)
	router.GET("/health", h.Health)
	router.GET("/api/health", h.Health)
}

// Health reports liveness and whether the knowledge base is indexed
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"ready":  h.bot.Ready(),
	})
}

// Chat streams the answer to a question as server-sent events
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgQuestionRequired})
		return
	}

	retriever, err := h.bot.Retriever()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgNotReady})
		return
	}

	composer, err := rag.NewComposer(retriever, h.llm)
	if err != nil {
		log.Printf("[Chat] Failed to build answer pipeline: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for ev := range composer.Stream(ctx, req.Question) {
		if ev.Err != nil {
			log.Printf("[Chat] Generation failed: %v", ev.Err)
			_ = writeEvent(c, gin.H{"error": msgGeneration})
			return
		}
		if err := writeEvent(c, gin.H{"token": ev.Token}); err != nil {
			log.Printf("[Chat] Client went away: %v", err)
			return
		}
	}
}

// writeEvent writes one SSE data frame and flushes it
func writeEvent(c *gin.Context, payload gin.H) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

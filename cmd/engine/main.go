package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TranslateRequest represents an incoming translation call
type TranslateRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceLang string `json:"source_lang" binding:"required"`
	TargetLang string `json:"target_lang" binding:"required"`
}

// TranslateResponse represents the translation result
type TranslateResponse struct {
	Text       string `json:"text"`
	EngineID   string `json:"engine_id"`
	DurationMs int64  `json:"duration_ms"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string    `json:"status"`
	EngineID    string    `json:"engine_id"`
	Timestamp   time.Time `json:"timestamp"`
	SuccessRate float64   `json:"success_rate"`
}

// MockEngine simulates an upstream translation engine with a small
// en<->fr vocabulary and configurable latency and failure rate.
type MockEngine struct {
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	engineID    string
	rng         *rand.Rand
	vocabulary  map[string]map[string]string
}

var supportedPairs = map[string]bool{
	"en:fr": true,
	"fr:en": true,
	"en:es": true,
	"es:en": true,
	"en:de": true,
	"de:en": true,
}

func NewMockEngine(successRate float64, minDelay, maxDelay time.Duration) *MockEngine {
	return &MockEngine{
		successRate: successRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		engineID:    "MOCK_ENGINE_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		vocabulary: map[string]map[string]string{
			"en:fr": {
				"hello": "bonjour", "world": "monde", "good": "bon",
				"morning": "matin", "thanks": "merci", "cat": "chat",
			},
			"fr:en": {
				"bonjour": "hello", "monde": "world", "bon": "good",
				"matin": "morning", "merci": "thanks", "chat": "cat",
			},
		},
	}
}

func (m *MockEngine) pairKey(source, target string) string {
	return strings.ToLower(source) + ":" + strings.ToLower(target)
}

func (m *MockEngine) Supports(source, target string) bool {
	return supportedPairs[m.pairKey(source, target)]
}

// translate maps known words and falls back to tagging the text with
// the target language code.
func (m *MockEngine) translate(req *TranslateRequest) string {
	vocab := m.vocabulary[m.pairKey(req.SourceLang, req.TargetLang)]
	if vocab != nil {
		words := strings.Fields(req.Text)
		translated := make([]string, 0, len(words))
		known := 0
		for _, w := range words {
			if out, ok := vocab[strings.ToLower(w)]; ok {
				translated = append(translated, out)
				known++
			} else {
				translated = append(translated, w)
			}
		}
		if known > 0 {
			return strings.Join(translated, " ")
		}
	}
	return fmt.Sprintf("[%s] %s", strings.ToLower(req.TargetLang), req.Text)
}

func (m *MockEngine) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockEngine) shouldSucceed() bool {
	return m.rng.Float64() < m.successRate
}

// Handler struct holds the mock engine and routes
type Handler struct {
	engine *MockEngine
}

func NewHandler(engine *MockEngine) *Handler {
	return &Handler{engine: engine}
}

// Translate handles translation requests
func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("source_lang", req.SourceLang).
		Str("target_lang", req.TargetLang).
		Int("text_len", len(req.Text)).
		Msg("Received translate request")

	if !h.engine.Supports(req.SourceLang, req.TargetLang) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       "Unsupported language pair",
			"source_lang": req.SourceLang,
			"target_lang": req.TargetLang,
		})
		return
	}

	delay := h.engine.randomDelay()
	time.Sleep(delay)

	if !h.engine.shouldSucceed() {
		log.Warn().
			Str("source_lang", req.SourceLang).
			Str("target_lang", req.TargetLang).
			Msg("Simulated engine failure")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Engine temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, TranslateResponse{
		Text:       h.engine.translate(&req),
		EngineID:   h.engine.engineID,
		DurationMs: delay.Milliseconds(),
	})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		EngineID:    h.engine.engineID,
		Timestamp:   time.Now(),
		SuccessRate: h.engine.successRate,
	})
}

// UpdateConfig allows runtime tuning of the failure rate
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req struct {
		SuccessRate *float64 `json:"success_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.SuccessRate != nil {
		if *req.SuccessRate < 0 || *req.SuccessRate > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "success_rate must be between 0 and 1"})
			return
		}
		h.engine.successRate = *req.SuccessRate
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"success_rate": h.engine.successRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/translate", handler.Translate)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8081")
	successRate := getEnvFloat("SUCCESS_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("success_rate", successRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Translation Engine")

	engine := NewMockEngine(successRate, minDelay, maxDelay)
	handler := NewHandler(engine)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

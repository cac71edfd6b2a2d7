package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/app"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database"
	"github.com/ajayfbd/TradeMentor-v3-sub000/llm"
	"github.com/ajayfbd/TradeMentor-v3-sub000/notifications"
	"github.com/ajayfbd/TradeMentor-v3-sub000/realtime"
	"github.com/ajayfbd/TradeMentor-v3-sub000/websocket"
)

// Server handles HTTP API requests
type Server struct {
	repo       *database.JournalRepository
	engine     *app.PatternEngine
	webhookMq  *notifications.WebhookManager
	broker     *realtime.Broker
	wsHub      *websocket.Hub
	llmClient  *llm.Client
	llmEnabled bool
}

// NewServer creates a new API server instance
func NewServer(repo *database.JournalRepository, engine *app.PatternEngine, webhookMq *notifications.WebhookManager, broker *realtime.Broker, wsHub *websocket.Hub, llmClient *llm.Client, llmEnabled bool) *Server {
	return &Server{
		repo:       repo,
		engine:     engine,
		webhookMq:  webhookMq,
		broker:     broker,
		wsHub:      wsHub,
		llmClient:  llmClient,
		llmEnabled: llmEnabled,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Register routes
	mux.Handle("GET /api/events", s.broker) // SSE Endpoint
	mux.Handle("GET /ws", s.wsHub)          // WebSocket Endpoint

	// Journal Routes
	mux.HandleFunc("GET /api/emotions", s.handleGetEmotions)
	mux.HandleFunc("POST /api/emotions", s.handleCreateEmotion)
	mux.HandleFunc("GET /api/trades", s.handleGetTrades)
	mux.HandleFunc("POST /api/trades", s.handleCreateTrade)

	// Pattern Analysis Routes
	mux.HandleFunc("GET /api/patterns/correlation", s.handleCorrelation)
	mux.HandleFunc("GET /api/patterns/levels", s.handleLevelStats)
	mux.HandleFunc("GET /api/patterns/trend", s.handleWeeklyTrend)
	mux.HandleFunc("GET /api/patterns/insights", s.handleInsights)
	mux.HandleFunc("GET /api/patterns/optimal", s.handleOptimalConditions)
	mux.HandleFunc("GET /api/patterns/snapshots", s.handleGetSnapshots)

	// Pattern Analysis Streaming Routes (LLM SSE)
	mux.HandleFunc("GET /api/patterns/insights/stream", s.handleInsightsStream)

	// Webhook Management Routes
	mux.HandleFunc("GET /api/config/webhooks", s.handleGetWebhooks)
	mux.HandleFunc("POST /api/config/webhooks", s.handleCreateWebhook)
	mux.HandleFunc("PUT /api/config/webhooks/{id}", s.handleUpdateWebhook)
	mux.HandleFunc("DELETE /api/config/webhooks/{id}", s.handleDeleteWebhook)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// Handlers are distributed across multiple files:
// - handlers_journal.go: Emotion check-ins and trade entries
// - handlers_patterns.go: Pattern reports and the LLM narrative stream
// - handlers_config.go: Webhook config, health check

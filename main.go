package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/api"
	"github.com/ajayfbd/TradeMentor-v3-sub000/app"
	"github.com/ajayfbd/TradeMentor-v3-sub000/cache"
	"github.com/ajayfbd/TradeMentor-v3-sub000/config"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database"
	"github.com/ajayfbd/TradeMentor-v3-sub000/llm"
	"github.com/ajayfbd/TradeMentor-v3-sub000/notifications"
	"github.com/ajayfbd/TradeMentor-v3-sub000/realtime"
	"github.com/ajayfbd/TradeMentor-v3-sub000/websocket"
)

func main() {
	// Load config from .env file
	cfg := config.LoadFromEnv()

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	// 1. Database Connection (GORM, journal CRUD + migrations)
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(cfg.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		cfg.DatabaseHost,
		dbPort,
		cfg.DatabaseName,
		cfg.DatabaseUser,
		cfg.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	// 2. Raw connection for the analytics read path
	rawDB, err := database.NewConnection(database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		DBName:   cfg.DatabaseName,
	})
	if err != nil {
		return fmt.Errorf("analytics database connection failed: %w", err)
	}
	defer rawDB.Close()

	// 3. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		cfg.RedisHost,
		cfg.RedisPort,
		cfg.RedisPassword,
	)
	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	}

	// Initialize schema (AutoMigrate)
	repo := database.NewJournalRepository(db, rawDB)
	if err := repo.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// Initialize Webhook Manager (with Redis)
	webhookManager := notifications.NewWebhookManager(repo, redisClient)

	// Initialize Realtime Broker and WebSocket Hub
	broker := realtime.NewBroker(redisClient)
	go broker.Run()

	wsHub := websocket.NewHub(broker.Feed())
	go wsHub.Run()

	// 4. Initialize LLM client if enabled
	var llmClient *llm.Client
	if cfg.LLM.Enabled {
		llmClient = llm.NewClient(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Model)
		log.Printf("✅ LLM Coaching Narratives ENABLED (Model: %s)", cfg.LLM.Model)
	} else {
		log.Println("ℹ️  LLM Coaching Narratives DISABLED")
	}

	// 5. Pattern Engine (report computation + cache + semaphore)
	reportCache := cache.NewReportCache(redisClient)
	engine := app.NewPatternEngine(repo.Analytics, reportCache, cfg.Analytics)

	// 6. Background Correlation Refresher
	log.Println("🚀 Starting correlation refresher...")
	refresher := app.NewCorrelationRefresher(repo, engine, webhookManager, broker, cfg.Analytics)
	go refresher.Start()

	// 7. Start API Server
	apiServer := api.NewServer(repo, engine, webhookManager, broker, wsHub, llmClient, cfg.LLM.Enabled)
	go func() {
		if err := apiServer.Start(cfg.ServerPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// 8. Wait for interrupt and perform graceful shutdown
	return gracefulShutdown(refresher, redisClient)
}

// gracefulShutdown handles graceful shutdown with timeout
func gracefulShutdown(refresher *app.CorrelationRefresher, redisClient *cache.RedisClient) error {
	// Setup signal handling
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	// Wait for interrupt signal
	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	// Shutdown tasks with timeout
	var wg sync.WaitGroup
	shutdownComplete := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()

		fmt.Println("🔗 Stopping correlation refresher...")
		refresher.Stop()

		if redisClient != nil {
			fmt.Println("🧠 Closing Redis connection...")
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis: %v", err)
			}
		}
	}()

	go func() {
		wg.Wait()
		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown complete")
	case <-time.After(10 * time.Second):
		fmt.Println("⚠️  Shutdown timed out, forcing exit")
	}

	return nil
}

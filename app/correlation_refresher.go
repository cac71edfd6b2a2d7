package app

import (
	"context"
	"log"
	"time"

	"github.com/ajayfbd/TradeMentor-v3-sub000/config"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database"
	"github.com/ajayfbd/TradeMentor-v3-sub000/notifications"
	"github.com/ajayfbd/TradeMentor-v3-sub000/realtime"
)

// CorrelationRefresher periodically recomputes the emotion/performance
// correlation for recently active users and persists the result as a
// snapshot. When a user's correlation first becomes statistically
// significant it notifies webhooks and broadcasts to connected dashboards.
type CorrelationRefresher struct {
	repo     *database.JournalRepository
	engine   *PatternEngine
	webhooks *notifications.WebhookManager
	broker   *realtime.Broker
	cfg      config.AnalyticsConfig
	done     chan bool
}

// NewCorrelationRefresher creates a new correlation refresher
func NewCorrelationRefresher(repo *database.JournalRepository, engine *PatternEngine, webhooks *notifications.WebhookManager, broker *realtime.Broker, cfg config.AnalyticsConfig) *CorrelationRefresher {
	return &CorrelationRefresher{
		repo:     repo,
		engine:   engine,
		webhooks: webhooks,
		broker:   broker,
		cfg:      cfg,
		done:     make(chan bool),
	}
}

// Start begins the refresh loop
func (cr *CorrelationRefresher) Start() {
	log.Println("🔗 Correlation Refresher started")

	interval := time.Duration(cr.cfg.RefreshIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial run
	cr.runRefresh()

	for {
		select {
		case <-ticker.C:
			cr.runRefresh()
		case <-cr.done:
			log.Println("🔗 Correlation Refresher stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (cr *CorrelationRefresher) Stop() {
	cr.done <- true
}

// runRefresh recomputes correlations for users active in the last 24 hours
func (cr *CorrelationRefresher) runRefresh() {
	log.Println("🔗 Running correlation refresh...")

	since := time.Now().Add(-24 * time.Hour)
	userIDs, err := cr.repo.Analytics.GetActiveUserIDs(since)
	if err != nil {
		log.Printf("⚠️  Failed to get active users for refresh: %v", err)
		return
	}

	if len(userIDs) == 0 {
		log.Println("ℹ️  No active users for correlation refresh")
		return
	}

	log.Printf("📊 Refreshing correlations for %d active users", len(userIDs))

	ctx := context.Background()
	saved := 0
	for _, userID := range userIDs {
		report, err := cr.engine.GetEmotionPerformanceCorrelation(ctx, userID, cr.cfg.RefreshLookbackDays)
		if err != nil {
			log.Printf("⚠️  Correlation refresh failed for user %d: %v", userID, err)
			continue
		}
		if report.InsufficientData {
			continue
		}

		previous, err := cr.repo.Analytics.GetLatestSnapshot(userID)
		if err != nil {
			log.Printf("⚠️  Failed to load previous snapshot for user %d: %v", userID, err)
			previous = nil
		}

		snapshot := &database.CorrelationSnapshot{
			UserID:       userID,
			CalculatedAt: report.GeneratedAt,
			Coefficient:  report.Coefficient,
			PValue:       report.PValue,
			Significant:  report.Significant,
			SampleSize:   report.SampleSize,
			LookbackDays: report.LookbackDays,
		}
		if err := cr.repo.Analytics.SaveSnapshot(snapshot); err != nil {
			log.Printf("⚠️  Failed to save snapshot for user %d: %v", userID, err)
			continue
		}
		saved++

		// Only announce the transition into significance, not every refresh
		if snapshot.Significant && (previous == nil || !previous.Significant) {
			if cr.webhooks != nil {
				cr.webhooks.SendSignificantPattern(snapshot)
			}
			if cr.broker != nil {
				cr.broker.Broadcast(realtime.EventPatternSignificant, snapshot)
			}
		}
	}

	if saved > 0 {
		log.Printf("✅ Correlation refresh complete: %d snapshots saved", saved)
	} else {
		log.Println("ℹ️  Correlation refresh complete: no users had sufficient data")
	}
}

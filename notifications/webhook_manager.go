package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ajayfbd/TradeMentor-v3-sub000/cache"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database"
	"github.com/ajayfbd/TradeMentor-v3-sub000/helpers"
)

// WebhookManager delivers pattern notifications to registered webhooks
type WebhookManager struct {
	repo   *database.JournalRepository
	redis  *cache.RedisClient
	client *http.Client
}

// WebhookPayload represents the JSON payload sent to webhooks
type WebhookPayload struct {
	DeliveryID   string    `json:"delivery_id"`
	Event        string    `json:"event"`
	UserID       int64     `json:"user_id"`
	CalculatedAt time.Time `json:"calculated_at"`
	Coefficient  float64   `json:"coefficient"`
	PValue       float64   `json:"p_value"`
	SampleSize   int       `json:"sample_size"`
	LookbackDays int       `json:"lookback_days"`
	Message      string    `json:"message"`
}

// NewWebhookManager creates a new webhook manager
func NewWebhookManager(repo *database.JournalRepository, redis *cache.RedisClient) *WebhookManager {
	return &WebhookManager{
		repo:  repo,
		redis: redis,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendSignificantPattern notifies matching webhooks that a user's
// emotion/performance correlation became statistically significant
func (wm *WebhookManager) SendSignificantPattern(snapshot *database.CorrelationSnapshot) {
	// 1. Get all active webhooks
	webhooks, err := wm.getActiveWebhooks()
	if err != nil {
		log.Printf("⚠️  Failed to load webhooks: %v", err)
		return
	}

	if len(webhooks) == 0 {
		return
	}

	// 2. Process each webhook (async)
	for _, hook := range webhooks {
		if wm.shouldSend(hook, snapshot) {
			go wm.deliverWebhook(hook, snapshot)
		}
	}
}

func (wm *WebhookManager) getActiveWebhooks() ([]database.PatternWebhook, error) {
	// Try cache first
	cacheKey := "active_pattern_webhooks"
	if wm.redis != nil {
		var cached []database.PatternWebhook
		if err := wm.redis.Get(context.Background(), cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	// Fetch from DB
	webhooks, err := wm.repo.Analytics.GetActiveWebhooks()
	if err != nil {
		return nil, err
	}

	// Update cache (expire 1 hour)
	if wm.redis != nil {
		_ = wm.redis.Set(context.Background(), cacheKey, webhooks, 1*time.Hour)
	}

	return webhooks, err
}

// createPayload generates the webhook payload from a snapshot
func (wm *WebhookManager) createPayload(snapshot *database.CorrelationSnapshot) WebhookPayload {
	message := fmt.Sprintf("📊 PATTERN ALERT! User %d: %s emotion/performance correlation (r=%s, p=%.3f, n=%d over %d days)",
		snapshot.UserID,
		strings.ToUpper(correlationLabel(snapshot.Coefficient)),
		helpers.FormatCoefficient(snapshot.Coefficient),
		snapshot.PValue,
		snapshot.SampleSize,
		snapshot.LookbackDays,
	)

	return WebhookPayload{
		DeliveryID:   uuid.NewString(),
		Event:        "pattern.significant",
		UserID:       snapshot.UserID,
		CalculatedAt: snapshot.CalculatedAt,
		Coefficient:  snapshot.Coefficient,
		PValue:       snapshot.PValue,
		SampleSize:   snapshot.SampleSize,
		LookbackDays: snapshot.LookbackDays,
		Message:      message,
	}
}

func correlationLabel(r float64) string {
	if r >= 0 {
		return "positive"
	}
	return "negative"
}

func (wm *WebhookManager) shouldSend(hook database.PatternWebhook, snapshot *database.CorrelationSnapshot) bool {
	// Check user filter
	if !userFilterMatches(hook.UserIDs, snapshot.UserID) {
		return false
	}

	// Check coefficient threshold
	if hook.MinAbsCoeff != nil {
		abs := snapshot.Coefficient
		if abs < 0 {
			abs = -abs
		}
		if abs < *hook.MinAbsCoeff {
			return false
		}
	}

	return true
}

// userFilterMatches reports whether a webhook's user filter admits the
// given user. An empty filter matches everyone. The filter is stored as a
// JSON array of IDs; comma-separated plain IDs are accepted for hand-edited
// rows. IDs compare whole, never as substrings.
func userFilterMatches(filter string, userID int64) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "null" || filter == "[]" {
		return true
	}

	var ids []int64
	if err := json.Unmarshal([]byte(filter), &ids); err == nil {
		for _, id := range ids {
			if id == userID {
				return true
			}
		}
		return false
	}

	// CSV fallback
	for _, part := range strings.Split(strings.Trim(filter, "[]"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		if id == userID {
			return true
		}
	}
	return false
}

func (wm *WebhookManager) deliverWebhook(hook database.PatternWebhook, snapshot *database.CorrelationSnapshot) {
	payload := wm.createPayload(snapshot)
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, hook.URL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		log.Printf("⚠️  Failed to build webhook request for %s: %v", hook.URL, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TradeMentor-Pattern-Alert/1.0")
	if hook.AuthHeader != "" {
		req.Header.Set(hook.AuthHeader, hook.AuthValue)
	}

	log.Printf("🔹 Sending pattern webhook to %s", hook.URL)

	timeout := time.Duration(hook.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := wm.client.Do(req.WithContext(ctx))
	if err != nil {
		wm.logDelivery(hook.ID, payload.DeliveryID, snapshot.ID, "FAILED", nil, err.Error())
		_ = wm.repo.Analytics.RecordWebhookResult(hook.ID, false, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		wm.logDelivery(hook.ID, payload.DeliveryID, snapshot.ID, "SUCCESS", &resp.StatusCode, "")
		_ = wm.repo.Analytics.RecordWebhookResult(hook.ID, true, "")
		return
	}

	errMsg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
	wm.logDelivery(hook.ID, payload.DeliveryID, snapshot.ID, "FAILED", &resp.StatusCode, errMsg)
	_ = wm.repo.Analytics.RecordWebhookResult(hook.ID, false, errMsg)
}

// RefreshCache reloads webhook configurations
func (wm *WebhookManager) RefreshCache() {
	if wm.redis != nil {
		_ = wm.redis.Delete(context.Background(), "active_pattern_webhooks")
		log.Println("🔄 Webhook cache invalidated")
	}
}

func (wm *WebhookManager) logDelivery(webhookID int, deliveryID string, snapshotID int64, status string, httpStatus *int, errMsg string) {
	entry := &database.PatternWebhookLog{
		WebhookID:      webhookID,
		DeliveryID:     deliveryID,
		SnapshotID:     &snapshotID,
		TriggeredAt:    time.Now(),
		Status:         status,
		HTTPStatusCode: httpStatus,
		ErrorMessage:   errMsg,
	}
	if err := wm.repo.Analytics.LogWebhookDelivery(entry); err != nil {
		log.Printf("⚠️  Failed to log webhook delivery: %v", err)
	}
}

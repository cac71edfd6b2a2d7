package analytics

import (
	"database/sql"
	"fmt"
	"time"

	models "github.com/ajayfbd/TradeMentor-v3-sub000/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles database operations for pattern analytics data.
// Snapshot and webhook persistence goes through GORM; the read path that
// feeds the pattern engine uses the raw connection so row scanning stays
// tight on large journals.
type Repository struct {
	db  *gorm.DB
	raw *sql.DB
}

// NewRepository creates a new analytics repository
func NewRepository(db *gorm.DB, raw *sql.DB) *Repository {
	return &Repository{db: db, raw: raw}
}

// TradeRow is a trade entry projected down to the fields the pattern
// engine consumes
type TradeRow struct {
	ID         int64
	Symbol     string
	Outcome    string
	ProfitLoss *float64
	EntryTime  time.Time
}

// EmotionRow is an emotion check projected down to the fields the pattern
// engine consumes
type EmotionRow struct {
	ID        int64
	Level     int
	Context   string
	Timestamp time.Time
}

// FetchTradeRows loads a user's trade entries since the given time,
// ordered by entry time ascending
func (r *Repository) FetchTradeRows(userID int64, since time.Time) ([]TradeRow, error) {
	rows, err := r.raw.Query(`
		SELECT id, symbol, outcome, profit_loss, entry_time
		FROM trade_entries
		WHERE user_id = $1 AND entry_time >= $2
		ORDER BY entry_time ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("FetchTradeRows: %w", err)
	}
	defer rows.Close()

	var trades []TradeRow
	for rows.Next() {
		var t TradeRow
		var pnl sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Outcome, &pnl, &t.EntryTime); err != nil {
			return nil, fmt.Errorf("FetchTradeRows scan: %w", err)
		}
		if pnl.Valid {
			v := pnl.Float64
			t.ProfitLoss = &v
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FetchTradeRows rows: %w", err)
	}
	return trades, nil
}

// FetchEmotionRows loads a user's emotion checks since the given time,
// ordered by timestamp ascending. Callers extend the window backwards by
// the pairing lookback so trades near the window edge can still match.
func (r *Repository) FetchEmotionRows(userID int64, since time.Time) ([]EmotionRow, error) {
	rows, err := r.raw.Query(`
		SELECT id, level, context, timestamp
		FROM emotion_checks
		WHERE user_id = $1 AND timestamp >= $2
		ORDER BY timestamp ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("FetchEmotionRows: %w", err)
	}
	defer rows.Close()

	var checks []EmotionRow
	for rows.Next() {
		var e EmotionRow
		if err := rows.Scan(&e.ID, &e.Level, &e.Context, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("FetchEmotionRows scan: %w", err)
		}
		checks = append(checks, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FetchEmotionRows rows: %w", err)
	}
	return checks, nil
}

// GetActiveUserIDs returns IDs of users who logged a trade since the given
// time. Used by the background refresher to decide whose correlations to
// recompute.
func (r *Repository) GetActiveUserIDs(since time.Time) ([]int64, error) {
	rows, err := r.raw.Query(`
		SELECT DISTINCT user_id
		FROM trade_entries
		WHERE entry_time >= $1
		ORDER BY user_id`, since)
	if err != nil {
		return nil, fmt.Errorf("GetActiveUserIDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("GetActiveUserIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetActiveUserIDs rows: %w", err)
	}
	return ids, nil
}

// ============================================================================
// Correlation Snapshots
// ============================================================================

// SaveSnapshot persists a correlation snapshot
func (r *Repository) SaveSnapshot(snapshot *models.CorrelationSnapshot) error {
	if err := r.db.Create(snapshot).Error; err != nil {
		return fmt.Errorf("SaveSnapshot: %w", err)
	}
	return nil
}

// GetSnapshots retrieves recent correlation snapshots for a user,
// newest first
func (r *Repository) GetSnapshots(userID int64, limit int) ([]models.CorrelationSnapshot, error) {
	var snapshots []models.CorrelationSnapshot
	query := r.db.Where("user_id = ?", userID).Order("calculated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("GetSnapshots: %w", err)
	}
	return snapshots, nil
}

// GetLatestSnapshot retrieves the most recent correlation snapshot for a user
func (r *Repository) GetLatestSnapshot(userID int64) (*models.CorrelationSnapshot, error) {
	var snapshot models.CorrelationSnapshot
	err := r.db.Where("user_id = ?", userID).Order("calculated_at DESC").First(&snapshot).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetLatestSnapshot: %w", err)
	}
	return &snapshot, nil
}

// ============================================================================
// Pattern Webhooks
// ============================================================================

// GetActiveWebhooks retrieves all active webhook registrations
func (r *Repository) GetActiveWebhooks() ([]models.PatternWebhook, error) {
	var hooks []models.PatternWebhook
	if err := r.db.Where("is_active = ?", true).Find(&hooks).Error; err != nil {
		return nil, fmt.Errorf("GetActiveWebhooks: %w", err)
	}
	return hooks, nil
}

// GetAllWebhooks retrieves all webhook registrations
func (r *Repository) GetAllWebhooks() ([]models.PatternWebhook, error) {
	var hooks []models.PatternWebhook
	if err := r.db.Order("id").Find(&hooks).Error; err != nil {
		return nil, fmt.Errorf("GetAllWebhooks: %w", err)
	}
	return hooks, nil
}

// CreateWebhook persists a webhook registration
func (r *Repository) CreateWebhook(hook *models.PatternWebhook) error {
	if hook.Name == "" {
		return models.NewValidationError("name", "is required")
	}
	if hook.URL == "" {
		return models.NewValidationError("url", "is required")
	}
	if err := r.db.Create(hook).Error; err != nil {
		return fmt.Errorf("CreateWebhook: %w", err)
	}
	return nil
}

// UpdateWebhook updates a webhook registration
func (r *Repository) UpdateWebhook(hook *models.PatternWebhook) error {
	result := r.db.Model(&models.PatternWebhook{}).Where("id = ?", hook.ID).Updates(hook)
	if result.Error != nil {
		return fmt.Errorf("UpdateWebhook: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundErrorWithID("webhook", hook.ID)
	}
	return nil
}

// DeleteWebhook removes a webhook registration
func (r *Repository) DeleteWebhook(id int) error {
	result := r.db.Delete(&models.PatternWebhook{}, id)
	if result.Error != nil {
		return fmt.Errorf("DeleteWebhook: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundErrorWithID("webhook", id)
	}
	return nil
}

// LogWebhookDelivery persists a webhook delivery log entry
func (r *Repository) LogWebhookDelivery(entry *models.PatternWebhookLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("LogWebhookDelivery: %w", err)
	}
	return nil
}

// RecordWebhookResult updates delivery counters on a webhook registration
func (r *Repository) RecordWebhookResult(id int, success bool, errMsg string) error {
	updates := map[string]interface{}{
		"last_triggered_at": time.Now(),
	}
	if success {
		updates["total_sent"] = gorm.Expr("total_sent + 1")
		updates["last_error"] = ""
	} else {
		updates["total_failed"] = gorm.Expr("total_failed + 1")
		updates["last_error"] = errMsg
	}
	if err := r.db.Model(&models.PatternWebhook{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("RecordWebhookResult: %w", err)
	}
	return nil
}

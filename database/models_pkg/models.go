package models

import "time"

// Emotion check context values
const (
	ContextPreTrade    = "pre-trade"
	ContextPostTrade   = "post-trade"
	ContextMarketEvent = "market-event"
)

// Trade outcome values
const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeBreakeven = "breakeven"
)

// EmotionCheck represents a single emotion log entry from the journal.
// Traders record their emotional state on a 1-10 scale before trades,
// after trades, or in response to market events. Checks are the left-hand
// side of the emotion/performance pairing used by the pattern engine.
//
// Key Fields:
//   - UserID: Owner of the record (indexed for per-user queries)
//   - Level: Emotion intensity from 1 (calm/negative) to 10 (intense/positive)
//   - Context: When the check was logged (pre-trade, post-trade, market-event)
//   - Timestamp: When the emotional state was recorded (indexed)
//   - Symbol: Optional ticker the trader was watching at the time
type EmotionCheck struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:idx_emotion_user_time,priority:1;not null" json:"user_id"`
	Level     int       `gorm:"not null" json:"level"` // 1-10
	Context   string    `gorm:"size:20;not null" json:"context"`
	Timestamp time.Time `gorm:"index:idx_emotion_user_time,priority:2;not null" json:"timestamp"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	Symbol    *string   `gorm:"size:10" json:"symbol,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for EmotionCheck
func (EmotionCheck) TableName() string {
	return "emotion_checks"
}

// TradeEntry represents a logged trade in the journal.
// Each entry captures the outcome and optional realized P&L of a single
// trade. Entries are the right-hand side of the emotion/performance pairing.
//
// Key Fields:
//   - UserID: Owner of the record (indexed for per-user queries)
//   - Symbol: Ticker traded
//   - Outcome: win, loss, or breakeven
//   - ProfitLoss: Optional realized P&L amount; when absent the pattern
//     engine estimates a unit return from the outcome
//   - EntryTime: When the position was opened (indexed, pairing anchor)
type TradeEntry struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"index:idx_trade_user_entry,priority:1;not null" json:"user_id"`
	Symbol     string     `gorm:"size:10;not null" json:"symbol"`
	Outcome    string     `gorm:"size:10;not null" json:"outcome"` // win, loss, breakeven
	ProfitLoss *float64   `gorm:"type:decimal(15,2)" json:"profit_loss,omitempty"`
	Quantity   *float64   `gorm:"type:decimal(15,2)" json:"quantity,omitempty"`
	EntryTime  time.Time  `gorm:"index:idx_trade_user_entry,priority:2;not null" json:"entry_time"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for TradeEntry
func (TradeEntry) TableName() string {
	return "trade_entries"
}

// CorrelationSnapshot persists the outcome of a correlation run for a user.
// Snapshots are written by the background refresher so dashboards can show
// how the emotion/performance relationship evolves over time without
// recomputing historical reports.
type CorrelationSnapshot struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index:idx_snapshot_user_time,priority:1;not null" json:"user_id"`
	CalculatedAt time.Time `gorm:"index:idx_snapshot_user_time,priority:2;not null" json:"calculated_at"`
	Coefficient  float64   `gorm:"type:decimal(10,6);not null" json:"coefficient"`
	PValue       float64   `gorm:"type:decimal(10,6);not null" json:"p_value"`
	Significant  bool      `gorm:"not null" json:"significant"`
	SampleSize   int       `gorm:"not null" json:"sample_size"`
	LookbackDays int       `gorm:"not null" json:"lookback_days"`
}

// TableName specifies the table name for CorrelationSnapshot
func (CorrelationSnapshot) TableName() string {
	return "correlation_snapshots"
}

// PatternWebhook holds webhook registration for pattern notifications.
// Registered URLs are called when the refresher detects a statistically
// significant emotion/performance correlation for a user.
type PatternWebhook struct {
	ID              int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string     `gorm:"size:100;not null" json:"name"`
	URL             string     `gorm:"not null" json:"url"`
	AuthHeader      string     `gorm:"size:100" json:"auth_header"`
	AuthValue       string     `json:"auth_value"`
	UserIDs         string     `json:"user_ids"` // Stored as JSON array; empty matches all users
	MinAbsCoeff     *float64   `gorm:"type:decimal(10,6)" json:"min_abs_coeff,omitempty"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	TimeoutSeconds  int        `gorm:"default:10" json:"timeout_seconds"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	TotalSent       int        `gorm:"default:0" json:"total_sent"`
	TotalFailed     int        `gorm:"default:0" json:"total_failed"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for PatternWebhook
func (PatternWebhook) TableName() string {
	return "pattern_webhooks"
}

// PatternWebhookLog holds webhook delivery logs
type PatternWebhookLog struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WebhookID      int       `gorm:"index;not null" json:"webhook_id"`
	DeliveryID     string    `gorm:"size:36;not null" json:"delivery_id"`
	SnapshotID     *int64    `json:"snapshot_id,omitempty"`
	TriggeredAt    time.Time `gorm:"index;not null" json:"triggered_at"`
	Status         string    `gorm:"type:text" json:"status"` // SUCCESS, FAILED, TIMEOUT
	HTTPStatusCode *int      `json:"http_status_code,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// TableName specifies the table name for PatternWebhookLog
func (PatternWebhookLog) TableName() string {
	return "pattern_webhook_logs"
}

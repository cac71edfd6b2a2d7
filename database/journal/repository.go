package journal

import (
	"fmt"
	"time"

	models "github.com/ajayfbd/TradeMentor-v3-sub000/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles database operations for journal records
// (emotion checks and trade entries)
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new journal repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ============================================================================
// Emotion Checks
// ============================================================================

// SaveEmotionCheck persists an emotion check
func (r *Repository) SaveEmotionCheck(check *models.EmotionCheck) error {
	if err := validateEmotionCheck(check); err != nil {
		return err
	}
	if check.Timestamp.IsZero() {
		check.Timestamp = time.Now()
	}
	if err := r.db.Create(check).Error; err != nil {
		return fmt.Errorf("SaveEmotionCheck: %w", err)
	}
	return nil
}

// GetEmotionChecks retrieves emotion checks for a user since a given time,
// newest first
func (r *Repository) GetEmotionChecks(userID int64, since time.Time, limit int) ([]models.EmotionCheck, error) {
	var checks []models.EmotionCheck
	query := r.db.Where("user_id = ?", userID).Order("timestamp DESC")
	if !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("GetEmotionChecks: %w", err)
	}
	return checks, nil
}

// ============================================================================
// Trade Entries
// ============================================================================

// SaveTradeEntry persists a trade entry
func (r *Repository) SaveTradeEntry(trade *models.TradeEntry) error {
	if err := validateTradeEntry(trade); err != nil {
		return err
	}
	if trade.EntryTime.IsZero() {
		trade.EntryTime = time.Now()
	}
	if err := r.db.Create(trade).Error; err != nil {
		return fmt.Errorf("SaveTradeEntry: %w", err)
	}
	return nil
}

// GetTradeEntries retrieves trade entries for a user since a given time,
// newest first
func (r *Repository) GetTradeEntries(userID int64, since time.Time, limit int) ([]models.TradeEntry, error) {
	var trades []models.TradeEntry
	query := r.db.Where("user_id = ?", userID).Order("entry_time DESC")
	if !since.IsZero() {
		query = query.Where("entry_time >= ?", since)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("GetTradeEntries: %w", err)
	}
	return trades, nil
}

// CountTradeEntries returns the number of trade entries a user logged since
// a given time
func (r *Repository) CountTradeEntries(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TradeEntry{}).
		Where("user_id = ? AND entry_time >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("CountTradeEntries: %w", err)
	}
	return count, nil
}

// ============================================================================
// Validation
// ============================================================================

func validateEmotionCheck(check *models.EmotionCheck) error {
	if check.UserID <= 0 {
		return models.NewValidationError("user_id", "is required")
	}
	if check.Level < 1 || check.Level > 10 {
		return models.NewValidationErrorWithValue("level", "must be between 1 and 10", check.Level)
	}
	switch check.Context {
	case models.ContextPreTrade, models.ContextPostTrade, models.ContextMarketEvent:
	default:
		return models.NewValidationErrorWithValue("context", "must be pre-trade, post-trade or market-event", check.Context)
	}
	return nil
}

func validateTradeEntry(trade *models.TradeEntry) error {
	if trade.UserID <= 0 {
		return models.NewValidationError("user_id", "is required")
	}
	if trade.Symbol == "" {
		return models.NewValidationError("symbol", "is required")
	}
	switch trade.Outcome {
	case models.OutcomeWin, models.OutcomeLoss, models.OutcomeBreakeven:
	default:
		return models.NewValidationErrorWithValue("outcome", "must be win, loss or breakeven", trade.Outcome)
	}
	return nil
}

package database

import (
	"fmt"

	"github.com/ajayfbd/TradeMentor-v3-sub000/database/analytics"
	"github.com/ajayfbd/TradeMentor-v3-sub000/database/journal"
)

// JournalRepository is the top-level repository facade for the journal
// backend. It combines the journal CRUD repository (GORM) and the pattern
// analytics repository (GORM + raw connection) behind a single value so
// handlers and services only wire one dependency.
type JournalRepository struct {
	Journal   *journal.Repository
	Analytics *analytics.Repository

	db  *Database
	raw *DB
}

// NewJournalRepository creates the repository facade. raw shares the same
// Postgres database as db; it carries the analytics read path.
func NewJournalRepository(db *Database, raw *DB) *JournalRepository {
	return &JournalRepository{
		Journal:   journal.NewRepository(db.DB()),
		Analytics: analytics.NewRepository(db.DB(), raw.GetConn()),
		db:        db,
		raw:       raw,
	}
}

// InitSchema performs auto-migration for all journal tables
func (r *JournalRepository) InitSchema() error {
	fmt.Println("🔄 Starting database schema initialization...")

	err := r.db.db.AutoMigrate(
		&EmotionCheck{},
		&TradeEntry{},
		&CorrelationSnapshot{},
		&PatternWebhook{},
		&PatternWebhookLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	fmt.Println("✅ Database schema initialized")
	return nil
}

// Ping verifies both database connections are alive
func (r *JournalRepository) Ping() error {
	if err := r.db.Ping(); err != nil {
		return fmt.Errorf("gorm connection: %w", err)
	}
	if err := r.raw.Ping(); err != nil {
		return fmt.Errorf("raw connection: %w", err)
	}
	return nil
}

// Package database provides database connection management for the
// TradeMentor trading-journal backend.
//
// This package includes:
//   - GORM/PostgreSQL connection management for journal CRUD
//   - A parallel raw database/sql connection used by the analytical
//     pairing query (see connection.go)
//   - Schema initialization via AutoMigrate
//
// Data Models:
//
//	All data models (EmotionCheck, TradeEntry, CorrelationSnapshot, etc.)
//	are defined in the models_pkg package to avoid circular import
//	dependencies.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "github.com/ajayfbd/TradeMentor-v3-sub000/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance. It serves as the central connection point for all
// journal database operations.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ============================================================================
// Type Aliases
// ============================================================================

// Type aliases so callers can keep importing journal models from the
// database package directly.

type EmotionCheck = models.EmotionCheck
type TradeEntry = models.TradeEntry
type CorrelationSnapshot = models.CorrelationSnapshot
type PatternWebhook = models.PatternWebhook
type PatternWebhookLog = models.PatternWebhookLog

// Error types surfaced to handlers
type ValidationError = models.ValidationError
type NotFoundError = models.NotFoundError

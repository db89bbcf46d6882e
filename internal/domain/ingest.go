// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// IngestReceipt records that a transcript batch identified by
// (session_id, batch_key) has already been applied. The periodic client
// push resends overlapping batches after transient failures; the unique
// tuple lets the ingest endpoint accept them idempotently and skip turns
// it has seen before.
type IngestReceipt struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	SessionID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_session_batch,priority:1"`
	BatchKey  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_session_batch,priority:2"`
	TurnCount int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (IngestReceipt) TableName() string { return "ingest_receipts" }

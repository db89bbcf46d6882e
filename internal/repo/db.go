// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and baseline seed rows.
package repo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/honeychat/honey-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
// When trace is true the GORM OpenTelemetry plugin is installed so queries
// show up as spans under the surrounding request trace.
func OpenSQLite(path string, trace bool) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if trace {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for every persisted entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Profile{},
		&domain.SessionState{},
		&domain.ChatSession{},
		&domain.Response{},
		&domain.Conversation{},
		&domain.Agent{},
		&domain.Channel{},
		&domain.ClinicLocation{},
		&domain.Referral{},
		&domain.FpmInteraction{},
		&domain.IngestReceipt{},
	)
}

// Seed ensures the baseline rows every deployment needs: the default web
// channel and the system overflow agent that keeps escalation from ever
// being truly blocked. Both inserts are idempotent by natural key.
func Seed(ctx context.Context, db *gorm.DB, overflowMaxChats int) error {
	if overflowMaxChats <= 0 {
		overflowMaxChats = 10000
	}

	var ch domain.Channel
	err := db.WithContext(ctx).Where("name = ?", "web").First(&ch).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		ch = domain.Channel{ID: uuid.NewString(), Name: "web", Kind: "web"}
		if err := db.WithContext(ctx).Create(&ch).Error; err != nil {
			return err
		}
	}

	var sink domain.Agent
	err = db.WithContext(ctx).Where("system = ?", true).First(&sink).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		sink = domain.Agent{
			ID:       uuid.NewString(),
			Name:     "Overflow Queue",
			Email:    "overflow@system.local",
			Role:     "agent",
			Status:   domain.AgentOnline,
			MaxChats: overflowMaxChats,
			// Worst priority so real agents always win ties.
			Priority: 1 << 20,
			System:   true,
		}
		return db.WithContext(ctx).Create(&sink).Error
	}
	return nil
}

// DefaultChannelID returns the id of the seeded "web" channel.
func DefaultChannelID(ctx context.Context, db *gorm.DB) (string, error) {
	var ch domain.Channel
	if err := db.WithContext(ctx).Where("name = ?", "web").First(&ch).Error; err != nil {
		return "", err
	}
	return ch.ID, nil
}

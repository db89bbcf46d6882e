// Package repo – aggregate/statistics queries.
//
// Small rollups backing the analytics endpoints and ETag generation in the
// HTTP layer. Each function is context-aware and safe to call from services
// or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// ResponsesStats returns aggregate metadata for a session's transcript: the
// total number of turns and the maximum UpdatedAt among them. When the
// session has no turns, count is 0 and maxUpdatedAt is nil.
func ResponsesStats(ctx context.Context, db *gorm.DB, sessionID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Response{}).Where("session_id = ?", sessionID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// FunnelRow is one step of the drop-off funnel: how many sessions recorded
// at least one turn at a given step.
type FunnelRow struct {
	StepKey  string `json:"step_key"`
	Sessions int64  `json:"sessions"`
}

// StepFunnel counts distinct sessions per step, busiest step first. Backs
// the drop-off dashboard.
func StepFunnel(ctx context.Context, db *gorm.DB) ([]FunnelRow, error) {
	var out []FunnelRow
	err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Select("step_key, COUNT(DISTINCT session_id) AS sessions").
		Group("step_key").
		Order("sessions DESC, step_key ASC").
		Scan(&out).Error
	return out, err
}

// SessionSummary is the headline analytics rollup.
type SessionSummary struct {
	TotalSessions     int64    `json:"total_sessions"`
	CompletedSessions int64    `json:"completed_sessions"`
	AvgDurationMin    *float64 `json:"avg_duration_minutes,omitempty"`
	AvgMessages       *float64 `json:"avg_messages,omitempty"`
}

// SummarizeSessions aggregates the chat_sessions table since the given
// time. Zero since means all time.
func SummarizeSessions(ctx context.Context, db *gorm.DB, since time.Time) (*SessionSummary, error) {
	scoped := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&domain.ChatSession{})
		if !since.IsZero() {
			q = q.Where("start_time >= ?", since)
		}
		return q
	}
	var s SessionSummary
	if err := scoped().Count(&s.TotalSessions).Error; err != nil {
		return nil, err
	}
	if s.TotalSessions == 0 {
		return &s, nil
	}
	if err := scoped().Where("completed = ?", true).Count(&s.CompletedSessions).Error; err != nil {
		return nil, err
	}
	var row struct {
		AvgDuration *float64
		AvgMessages *float64
	}
	err := scoped().
		Select("AVG(duration_minutes) AS avg_duration, AVG(message_count) AS avg_messages").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	s.AvgDurationMin = row.AvgDuration
	s.AvgMessages = row.AvgMessages
	return &s, nil
}

// EscalationStats summarizes the handoff pipeline.
type EscalationStats struct {
	Pending  int64 `json:"pending"`
	Assigned int64 `json:"assigned"`
	Resolved int64 `json:"resolved"`
}

// SummarizeEscalations counts conversations per escalation status.
func SummarizeEscalations(ctx context.Context, db *gorm.DB) (*EscalationStats, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	var s EscalationStats
	for _, r := range rows {
		switch r.Status {
		case domain.EscalationPending:
			s.Pending = r.N
		case domain.EscalationAssigned:
			s.Assigned = r.N
		case domain.EscalationResolved:
			s.Resolved = r.N
		}
	}
	return &s, nil
}

// Package domain defines the persistence models for the chatbot backend:
// visitor profiles, synchronized session state, chat-session analytics rows,
// and the append-only response log. These types are mapped with GORM and
// form the core data layer of the application.
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile holds the attributes collected from one visitor over the scripted
// conversation. It is keyed by the client-generated session token and follows
// upsert semantics: a later answer for the same field replaces the earlier
// one, it is never appended.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - SessionID: client-held session token; unique, one profile per session.
//   - Language .. Intent: nullable answer fields, written by the flow engine
//     as side effects of transitions.
//   - CurrentStep: last flow node the visitor reached (step key).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Profile struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	SessionID     string         `json:"session_id"     gorm:"type:varchar(64);not null;uniqueIndex:ux_profile_session"`
	Language      *string        `json:"language,omitempty"       gorm:"type:varchar(32)"`
	Gender        *string        `json:"gender,omitempty"         gorm:"type:varchar(16)"`
	State         *string        `json:"state,omitempty"          gorm:"type:varchar(64)"`
	LGA           *string        `json:"lga,omitempty"            gorm:"type:varchar(64);column:lga"`
	AgeGroup      *string        `json:"age_group,omitempty"      gorm:"type:varchar(16)"`
	MaritalStatus *string        `json:"marital_status,omitempty" gorm:"type:varchar(32)"`
	CurrentFPM    *string        `json:"current_fpm,omitempty"    gorm:"type:varchar(64);column:current_fpm"`
	ConcernType   *string        `json:"concern_type,omitempty"   gorm:"type:varchar(64)"`
	Intent        *string        `json:"intent,omitempty"         gorm:"type:varchar(64)"`
	CurrentStep   string         `json:"current_step"   gorm:"type:varchar(64);not null;default:''"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// SessionState is the durable snapshot of a conversation used by the resume
// mechanism. One row per session token; saves are last-writer-wins upserts
// with no concurrency token, so two tabs sharing a session token can clobber
// each other (accepted, documented on the service layer).
//
// State is an opaque serialized blob owned by the client widget; the server
// stores and returns it verbatim.
type SessionState struct {
	SessionID    string    `json:"session_id"    gorm:"type:varchar(64);primaryKey"`
	State        string    `json:"chat_state"    gorm:"type:text;not null;column:chat_state"`
	LastActivity time.Time `json:"last_activity" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for SessionState.
func (SessionState) TableName() string { return "session_states" }

// ChatSession is an analytics record of one conversation run: when it
// started and ended, how many turns it had, and where in the flow it
// finished. It is reporting data, not the resume snapshot (see SessionState).
type ChatSession struct {
	ID              string         `json:"id"         gorm:"type:char(36);primaryKey"`
	SessionID       string         `json:"session_id" gorm:"type:varchar(64);not null;index:idx_session_runs"`
	StartTime       time.Time      `json:"session_start_time" gorm:"not null"`
	EndTime         *time.Time     `json:"session_end_time,omitempty"`
	MessageCount    int            `json:"total_messages_count"      gorm:"not null;default:0"`
	DurationMinutes *float64       `json:"session_duration_minutes,omitempty"`
	Completed       bool           `json:"session_completed"         gorm:"not null;default:false"`
	Outcome         *string        `json:"session_outcome,omitempty" gorm:"type:varchar(64)"`
	FinalStep       *string        `json:"final_step_reached,omitempty" gorm:"type:varchar(64)"`
	UserAgent       *string        `json:"user_agent,omitempty"      gorm:"type:varchar(255)"`
	IPAddress       *string        `json:"ip_address,omitempty"      gorm:"type:varchar(64)"`
	DeviceType      *string        `json:"device_type,omitempty"     gorm:"type:varchar(32)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for ChatSession.
func (ChatSession) TableName() string { return "chat_sessions" }

// Response is one turn of the transcript: the question asked, the raw answer,
// and its normalized value. Rows are append-only and ordered by creation
// time; together they form the replayable record of a conversation.
//
// There is deliberately no uniqueness constraint on the natural fields: the
// same step may legitimately be answered more than once (fallback re-prompts,
// corrected answers), and the periodic transcript push may resend turns.
type Response struct {
	ID               string         `json:"id"          gorm:"type:char(36);primaryKey"`
	SessionID        string         `json:"session_id"  gorm:"type:varchar(64);not null;index:idx_session_turns,priority:1"`
	StepKey          string         `json:"step_key"    gorm:"type:varchar(64);not null;index"`
	Question         string         `json:"question_text" gorm:"type:text;not null"`
	RawInput         string         `json:"user_response_raw" gorm:"type:text;not null"`
	NormalizedValue  string         `json:"normalized_value"  gorm:"type:varchar(255);not null;default:''"`
	Widget           string         `json:"widget_used" gorm:"type:varchar(32);not null"`
	AvailableOptions datatypes.JSON `json:"available_options,omitempty" gorm:"type:json"`
	Category         string         `json:"response_category" gorm:"type:varchar(64);not null;default:'';index"`
	IsInitial        bool           `json:"is_initial_response" gorm:"not null;default:false"`
	CreatedAt        time.Time      `json:"created_at"  gorm:"index:idx_session_turns,priority:2"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "responses" }

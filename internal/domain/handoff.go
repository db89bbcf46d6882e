// Package domain – human-handoff entities.
//
// This file defines the models behind the bot-to-agent escalation path:
// conversations with an escalation status, the agents that pick them up,
// and the channels conversations are routed over.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Escalation status values for a Conversation. The only legal transitions
// are NONE → PENDING → ASSIGNED → RESOLVED; everything else is rejected by
// the escalation service.
const (
	EscalationNone     = "NONE"
	EscalationPending  = "PENDING"
	EscalationAssigned = "ASSIGNED"
	EscalationResolved = "RESOLVED"
)

// Agent presence values.
const (
	AgentOnline  = "ONLINE"
	AgentOffline = "OFFLINE"
	AgentAway    = "AWAY"
	AgentBusy    = "BUSY"
)

// Conversation tracks the handoff state of one escalated conversation.
// A row exists only once escalation has been requested at least once.
//
// Invariants (enforced by the escalation service, not the schema):
//   - AssignedAgentID non-nil implies Status == EscalationAssigned.
//   - An agent's count of ASSIGNED conversations never exceeds its MaxChats;
//     the count is always derived from live rows, never cached.
type Conversation struct {
	ID              string         `json:"conversation_id" gorm:"type:char(36);primaryKey"`
	SessionID       string         `json:"session_id"      gorm:"type:varchar(64);not null;index"`
	ChannelID       string         `json:"channel_id"      gorm:"type:char(36);not null;index"`
	Status          string         `json:"escalation_status" gorm:"type:varchar(16);not null;default:'NONE';index;check:status IN ('NONE','PENDING','ASSIGNED','RESOLVED')"`
	Reason          *string        `json:"escalation_reason,omitempty" gorm:"type:varchar(64)"`
	AssignedAgentID *string        `json:"assigned_agent_id,omitempty" gorm:"type:char(36);index"`
	EscalatedAt     *time.Time     `json:"escalated_at,omitempty"`
	AssignedAt      *time.Time     `json:"assigned_at,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"               gorm:"index"`

	// AssignedAgent is the FK association; assignment rows survive agent
	// removal so transcripts keep their attribution.
	AssignedAgent *Agent `json:"-" gorm:"foreignKey:AssignedAgentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Agent is a human support operator who can receive escalated conversations.
//
// MaxChats caps concurrent ASSIGNED conversations; Priority breaks ties
// between equally loaded agents (lower wins). System marks the overflow
// sink agent seeded at boot with a very large MaxChats so that escalation
// is never truly blocked in a default deployment.
type Agent struct {
	ID           string         `json:"id"      gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name"    gorm:"type:varchar(128);not null"`
	Email        string         `json:"email"   gorm:"type:varchar(255);not null;uniqueIndex:ux_agent_email"`
	PasswordHash string         `json:"-"       gorm:"type:varchar(128);not null"`
	Role         string         `json:"role"    gorm:"type:varchar(16);not null;default:'agent';check:role IN ('agent','admin')"`
	Status       string         `json:"status"  gorm:"type:varchar(16);not null;default:'OFFLINE';index;check:status IN ('ONLINE','OFFLINE','AWAY','BUSY')"`
	MaxChats     int            `json:"max_chats" gorm:"not null;default:5"`
	Priority     int            `json:"priority"  gorm:"not null;default:100"`
	System       bool           `json:"system"    gorm:"not null;default:false"`
	LastActiveAt *time.Time     `json:"last_active_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"       gorm:"index"`
}

// TableName returns the database table name for Agent.
func (Agent) TableName() string { return "agents" }

// Channel is a named delivery surface conversations are attributed to
// (web widget, WhatsApp, …). The default "web" channel is seeded at boot.
type Channel struct {
	ID        string         `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:ux_channel_name"`
	Kind      string         `json:"kind" gorm:"type:varchar(32);not null;default:'web'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"    gorm:"index"`
}

// TableName returns the database table name for Channel.
func (Channel) TableName() string { return "channels" }

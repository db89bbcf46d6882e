// Package repo – conversations and agent assignment.
//
// The capacity invariant lives here: an agent's live load is counted and
// the assignment written inside one transaction, so two concurrent
// assignments cannot both take an agent's last open slot. SQLite serializes
// writers; the transaction keeps the read-then-write window closed on
// stores with weaker defaults.
//
// Agent load is always derived from live ASSIGNED rows, never cached, so it
// cannot drift.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// ErrNoAgentAvailable signals that every online agent is at capacity. It is
// a valid waiting state, not a failure: the conversation stays PENDING and
// the caller retries later.
var ErrNoAgentAvailable = errors.New("no agent available")

// GetConversation fetches one conversation by id, or ErrNotFound.
func GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConversationBySession returns the newest conversation for a session
// token, or ErrNotFound.
func GetConversationBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConversation inserts a conversation in the NONE state.
func CreateConversation(ctx context.Context, db *gorm.DB, sessionID, channelID string) (*domain.Conversation, error) {
	c := &domain.Conversation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ChannelID: channelID,
		Status:    domain.EscalationNone,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// MarkPending moves a conversation from NONE to PENDING, stamping the
// escalation time and reason. The status guard in the WHERE clause makes
// the transition atomic; zero affected rows means the row was not in NONE.
func MarkPending(ctx context.Context, db *gorm.DB, id, reason string) (bool, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND status = ?", id, domain.EscalationNone).
		Updates(map[string]any{
			"status":       domain.EscalationPending,
			"reason":       reason,
			"escalated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AgentLoad returns the number of conversations currently ASSIGNED to
// agentID. Always computed live.
func AgentLoad(ctx context.Context, db *gorm.DB, agentID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("assigned_agent_id = ? AND status = ?", agentID, domain.EscalationAssigned).
		Count(&n).Error
	return n, err
}

// agentWithLoad carries an eligibility-query row.
type agentWithLoad struct {
	domain.Agent
	Load int64
}

// AssignAgent atomically picks the least-loaded eligible agent and moves the
// PENDING conversation to ASSIGNED. Eligible means status ONLINE and live
// load below max_chats; ties break by priority then id for determinism.
// System agents (the overflow sink) sort last, so the sink only receives a
// conversation when no real agent has a free slot.
//
// Returns (conversation, agent, nil) on success, ErrNoAgentAvailable when
// the pool is exhausted (conversation stays PENDING), and ErrNotFound when
// the conversation does not exist or is not PENDING.
func AssignAgent(ctx context.Context, db *gorm.DB, conversationID string) (*domain.Conversation, *domain.Agent, error) {
	var (
		conv  domain.Conversation
		agent domain.Agent
	)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND status = ?", conversationID, domain.EscalationPending).
			First(&conv).Error; err != nil {
			return err
		}

		var candidates []agentWithLoad
		err := tx.Model(&domain.Agent{}).
			Select("agents.*, COALESCE(live.load, 0) AS load").
			Joins(`LEFT JOIN (
				SELECT assigned_agent_id, COUNT(*) AS load
				FROM conversations
				WHERE status = ? AND deleted_at IS NULL
				GROUP BY assigned_agent_id
			) live ON live.assigned_agent_id = agents.id`, domain.EscalationAssigned).
			Where("agents.status = ?", domain.AgentOnline).
			Where("COALESCE(live.load, 0) < agents.max_chats").
			Order("agents.system ASC, load ASC, agents.priority ASC, agents.id ASC").
			Limit(1).
			Scan(&candidates).Error
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return ErrNoAgentAvailable
		}
		agent = candidates[0].Agent

		now := time.Now().UTC()
		res := tx.Model(&domain.Conversation{}).
			Where("id = ? AND status = ?", conversationID, domain.EscalationPending).
			Updates(map[string]any{
				"status":            domain.EscalationAssigned,
				"assigned_agent_id": agent.ID,
				"assigned_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		conv.Status = domain.EscalationAssigned
		conv.AssignedAgentID = &agent.ID
		conv.AssignedAt = &now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &conv, &agent, nil
}

// AssignTo atomically assigns a PENDING conversation to a specific agent
// (manual assignment). The capacity check runs in the same transaction.
func AssignTo(ctx context.Context, db *gorm.DB, conversationID, agentID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND status = ?", conversationID, domain.EscalationPending).
			First(&conv).Error; err != nil {
			return err
		}
		var ag domain.Agent
		if err := tx.Where("id = ?", agentID).First(&ag).Error; err != nil {
			return err
		}
		load, err := AgentLoad(ctx, tx, agentID)
		if err != nil {
			return err
		}
		if ag.Status != domain.AgentOnline || load >= int64(ag.MaxChats) {
			return ErrNoAgentAvailable
		}
		now := time.Now().UTC()
		res := tx.Model(&domain.Conversation{}).
			Where("id = ? AND status = ?", conversationID, domain.EscalationPending).
			Updates(map[string]any{
				"status":            domain.EscalationAssigned,
				"assigned_agent_id": agentID,
				"assigned_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		conv.Status = domain.EscalationAssigned
		conv.AssignedAgentID = &agentID
		conv.AssignedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Resolve moves an ASSIGNED conversation to RESOLVED and clears the agent.
// Zero affected rows reports false (row missing or not ASSIGNED).
func Resolve(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND status = ?", id, domain.EscalationAssigned).
		Updates(map[string]any{
			"status":            domain.EscalationResolved,
			"assigned_agent_id": nil,
			"resolved_at":       now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListPendingConversations returns the escalation queue, oldest first.
func ListPendingConversations(ctx context.Context, db *gorm.DB) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("status = ?", domain.EscalationPending).
		Order("escalated_at asc").
		Find(&out).Error
	return out, err
}

// ListAssignedConversations returns the conversations currently assigned to
// agentID, oldest assignment first.
func ListAssignedConversations(ctx context.Context, db *gorm.DB, agentID string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("assigned_agent_id = ? AND status = ?", agentID, domain.EscalationAssigned).
		Order("assigned_at asc").
		Find(&out).Error
	return out, err
}

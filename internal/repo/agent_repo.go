package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// CreateAgent inserts a new agent row. The password must already be hashed.
func CreateAgent(ctx context.Context, db *gorm.DB, name, email, passwordHash, role string, maxChats, priority int) (*domain.Agent, error) {
	a := &domain.Agent{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       domain.AgentOffline,
		MaxChats:     maxChats,
		Priority:     priority,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAgent fetches one agent by id, or ErrNotFound.
func GetAgent(ctx context.Context, db *gorm.DB, id string) (*domain.Agent, error) {
	var a domain.Agent
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAgentByEmail fetches one agent by email, or ErrNotFound. Used by login.
func GetAgentByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Agent, error) {
	var a domain.Agent
	if err := db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAgents returns all agents ordered by priority then name. The system
// overflow agent is included; callers that do not want it filter on System.
func ListAgents(ctx context.Context, db *gorm.DB) ([]domain.Agent, error) {
	var out []domain.Agent
	err := db.WithContext(ctx).Order("priority asc, name asc").Find(&out).Error
	return out, err
}

// SetAgentStatus updates an agent's presence and touches last_active_at.
// Zero affected rows reports ErrNotFound.
func SetAgentStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Agent{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "last_active_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateAgent applies a partial update (name, max_chats, priority, role).
func UpdateAgent(ctx context.Context, db *gorm.DB, id string, patch map[string]any) (*domain.Agent, error) {
	if len(patch) > 0 {
		res := db.WithContext(ctx).
			Model(&domain.Agent{}).
			Where("id = ?", id).
			Updates(patch)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return GetAgent(ctx, db, id)
}

// DeleteAgent soft-deletes an agent. Assigned conversations keep their
// attribution through the SET NULL association.
func DeleteAgent(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Agent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AgentLoadRow pairs an agent with its live ASSIGNED count.
type AgentLoadRow struct {
	Agent domain.Agent
	Load  int64
}

// ListAgentLoads returns every agent with its live load, least loaded first.
// Backs the dashboard view; the numbers here and the ones assignment uses
// come from the same query shape so they cannot disagree.
func ListAgentLoads(ctx context.Context, db *gorm.DB) ([]AgentLoadRow, error) {
	var rows []agentWithLoad
	err := db.WithContext(ctx).Model(&domain.Agent{}).
		Select("agents.*, COALESCE(live.load, 0) AS load").
		Joins(`LEFT JOIN (
			SELECT assigned_agent_id, COUNT(*) AS load
			FROM conversations
			WHERE status = ? AND deleted_at IS NULL
			GROUP BY assigned_agent_id
		) live ON live.assigned_agent_id = agents.id`, domain.EscalationAssigned).
		Order("load ASC, agents.priority ASC, agents.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]AgentLoadRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, AgentLoadRow{Agent: r.Agent, Load: r.Load})
	}
	return out, nil
}

// Package services – AgentService
//
// This file implements the AgentService: agent accounts, login, presence,
// and the dashboard's load view. Passwords are stored as bcrypt hashes and
// logins produce the JWTs that guard the agent surface.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/auth"
	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/repo"
)

// AgentRepo defines the repository contract required by AgentService.
type AgentRepo interface {
	CreateAgent(ctx context.Context, db *gorm.DB, name, email, passwordHash, role string, maxChats, priority int) (*domain.Agent, error)
	GetAgent(ctx context.Context, db *gorm.DB, id string) (*domain.Agent, error)
	GetAgentByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Agent, error)
	ListAgents(ctx context.Context, db *gorm.DB) ([]domain.Agent, error)
	SetAgentStatus(ctx context.Context, db *gorm.DB, id, status string) error
	UpdateAgent(ctx context.Context, db *gorm.DB, id string, patch map[string]any) (*domain.Agent, error)
	DeleteAgent(ctx context.Context, db *gorm.DB, id string) error
	ListAgentLoads(ctx context.Context, db *gorm.DB) ([]repo.AgentLoadRow, error)
}

// AgentService manages agent accounts and presence.
type AgentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the agent repository used by this service.
	Repo AgentRepo
	// Signer mints session tokens on login.
	Signer *auth.Signer

	// DefaultMaxChats is applied when a new agent specifies no cap.
	DefaultMaxChats int
	// DefaultPriority is applied when a new agent specifies no priority.
	DefaultPriority int
}

// NewAgentService constructs an AgentService with the stock capacity
// defaults.
func NewAgentService(db *gorm.DB, r AgentRepo, signer *auth.Signer) *AgentService {
	return &AgentService{DB: db, Repo: r, Signer: signer, DefaultMaxChats: 5, DefaultPriority: 100}
}

// validStatus reports whether s names a known presence value.
func validStatus(s string) bool {
	switch s {
	case domain.AgentOnline, domain.AgentOffline, domain.AgentAway, domain.AgentBusy:
		return true
	}
	return false
}

// Register creates an agent account with a hashed password. Emails are
// normalized to lower case; a duplicate reports ErrEmailTaken.
func (s *AgentService) Register(ctx context.Context, name, email, password, role string, maxChats, priority int) (*domain.Agent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, auth.ErrBadCredentials
	}
	if role != auth.RoleAgent && role != auth.RoleAdmin {
		role = auth.RoleAgent
	}
	if maxChats <= 0 {
		maxChats = s.DefaultMaxChats
	}
	if priority <= 0 {
		priority = s.DefaultPriority
	}
	if _, err := s.Repo.GetAgentByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateAgent(ctx, s.DB, strings.TrimSpace(name), email, hash, role, maxChats, priority)
}

// Login verifies the credentials and returns the agent plus a signed token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AgentService) Login(ctx context.Context, email, password string) (*domain.Agent, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	agent, err := s.Repo.GetAgentByEmail(ctx, s.DB, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", auth.ErrBadCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := auth.CheckPassword(agent.PasswordHash, password); err != nil {
		return nil, "", auth.ErrBadCredentials
	}
	token, err := s.Signer.Mint(agent.ID, agent.Role)
	if err != nil {
		return nil, "", err
	}
	return agent, token, nil
}

// Get returns one agent, or ErrAgentNotFound.
func (s *AgentService) Get(ctx context.Context, id string) (*domain.Agent, error) {
	agent, err := s.Repo.GetAgent(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAgentNotFound
	}
	return agent, err
}

// List returns all agents.
func (s *AgentService) List(ctx context.Context) ([]domain.Agent, error) {
	return s.Repo.ListAgents(ctx, s.DB)
}

// SetStatus updates an agent's presence. Going OFFLINE does not release
// assigned conversations; they stay with the agent until resolved.
func (s *AgentService) SetStatus(ctx context.Context, id, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !validStatus(status) {
		return ErrInvalidStatus
	}
	err := s.Repo.SetAgentStatus(ctx, s.DB, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAgentNotFound
	}
	return err
}

// Update applies a partial account update (name, max_chats, priority, role).
func (s *AgentService) Update(ctx context.Context, id string, patch map[string]any) (*domain.Agent, error) {
	allowed := map[string]struct{}{"name": {}, "max_chats": {}, "priority": {}, "role": {}}
	filtered := make(map[string]any, len(patch))
	for k, v := range patch {
		if _, ok := allowed[k]; ok {
			filtered[k] = v
		}
	}
	agent, err := s.Repo.UpdateAgent(ctx, s.DB, id, filtered)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAgentNotFound
	}
	return agent, err
}

// Remove soft-deletes an agent account.
func (s *AgentService) Remove(ctx context.Context, id string) error {
	err := s.Repo.DeleteAgent(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAgentNotFound
	}
	return err
}

// Loads returns every agent with its live assigned-conversation count,
// least loaded first.
func (s *AgentService) Loads(ctx context.Context) ([]repo.AgentLoadRow, error) {
	return s.Repo.ListAgentLoads(ctx, s.DB)
}

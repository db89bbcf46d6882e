// Package services – EscalationService
//
// This file implements the EscalationService, the state machine that moves
// conversations through NONE → PENDING → ASSIGNED → RESOLVED. Transition
// legality is enforced here; the capacity arithmetic for picking an agent
// lives in the repository so it shares a transaction with the assignment
// write.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/repo"
)

// EscalationRepo defines the repository contract required by
// EscalationService.
type EscalationRepo interface {
	GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error)
	GetConversationBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Conversation, error)
	CreateConversation(ctx context.Context, db *gorm.DB, sessionID, channelID string) (*domain.Conversation, error)
	MarkPending(ctx context.Context, db *gorm.DB, id, reason string) (bool, error)
	AssignAgent(ctx context.Context, db *gorm.DB, conversationID string) (*domain.Conversation, *domain.Agent, error)
	AssignTo(ctx context.Context, db *gorm.DB, conversationID, agentID string) (*domain.Conversation, error)
	Resolve(ctx context.Context, db *gorm.DB, id string) (bool, error)
	ListPendingConversations(ctx context.Context, db *gorm.DB) ([]domain.Conversation, error)
	ListAssignedConversations(ctx context.Context, db *gorm.DB, agentID string) ([]domain.Conversation, error)
	DefaultChannelID(ctx context.Context, db *gorm.DB) (string, error)

	CreateChannel(ctx context.Context, db *gorm.DB, name, kind string) (*domain.Channel, error)
	GetChannelByName(ctx context.Context, db *gorm.DB, name string) (*domain.Channel, error)
	ListChannels(ctx context.Context, db *gorm.DB) ([]domain.Channel, error)
	DeleteChannel(ctx context.Context, db *gorm.DB, id string) error
}

// EscalationService drives the bot-to-agent handoff.
type EscalationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the escalation repository used by this service.
	Repo EscalationRepo

	// AutoAssign controls whether a successful escalation request
	// immediately tries to hand the conversation to an agent. When the
	// pool is exhausted the conversation simply stays pending.
	AutoAssign bool
}

// NewEscalationService constructs an EscalationService with auto-assignment
// enabled.
func NewEscalationService(db *gorm.DB, r EscalationRepo) *EscalationService {
	return &EscalationService{DB: db, Repo: r, AutoAssign: true}
}

// RequestEscalation moves the session's conversation to PENDING, creating
// the conversation row on first escalation. Requesting escalation on a
// conversation that is already PENDING or ASSIGNED is idempotent and
// returns the current row; a RESOLVED conversation starts a new one.
func (s *EscalationService) RequestEscalation(ctx context.Context, sessionID, reason string) (*domain.Conversation, error) {
	conv, err := s.Repo.GetConversationBySession(ctx, s.DB, sessionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		conv, err = s.createForSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case conv.Status == domain.EscalationResolved:
		conv, err = s.createForSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	case conv.Status == domain.EscalationPending || conv.Status == domain.EscalationAssigned:
		return conv, nil
	}

	moved, err := s.Repo.MarkPending(ctx, s.DB, conv.ID, reason)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost a race: re-read and accept whatever state won.
		return s.Repo.GetConversation(ctx, s.DB, conv.ID)
	}

	if s.AutoAssign {
		if assigned, _, err := s.Repo.AssignAgent(ctx, s.DB, conv.ID); err == nil {
			return assigned, nil
		} else if !errors.Is(err, repo.ErrNoAgentAvailable) {
			return nil, err
		}
	}
	return s.Repo.GetConversation(ctx, s.DB, conv.ID)
}

// Assign hands a PENDING conversation to the least-loaded online agent.
// Ties break by priority then id. Returns ErrNoAgentAvailable when every
// online agent is at capacity (the conversation stays pending) and
// ErrInvalidTransition when the conversation is not PENDING.
func (s *EscalationService) Assign(ctx context.Context, conversationID string) (*domain.Conversation, *domain.Agent, error) {
	conv, agent, err := s.Repo.AssignAgent(ctx, s.DB, conversationID)
	switch {
	case errors.Is(err, repo.ErrNoAgentAvailable):
		return nil, nil, ErrNoAgentAvailable
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, s.transitionError(ctx, conversationID)
	case err != nil:
		return nil, nil, err
	}
	return conv, agent, nil
}

// AssignTo hands a PENDING conversation to a named agent, subject to the
// same capacity check as automatic assignment.
func (s *EscalationService) AssignTo(ctx context.Context, conversationID, agentID string) (*domain.Conversation, error) {
	conv, err := s.Repo.AssignTo(ctx, s.DB, conversationID, agentID)
	switch {
	case errors.Is(err, repo.ErrNoAgentAvailable):
		return nil, ErrNoAgentAvailable
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, s.transitionError(ctx, conversationID)
	case err != nil:
		return nil, err
	}
	return conv, nil
}

// Resolve closes an ASSIGNED conversation, freeing the agent's slot.
// Resolving a conversation in any other state is ErrInvalidTransition.
func (s *EscalationService) Resolve(ctx context.Context, conversationID string) error {
	moved, err := s.Repo.Resolve(ctx, s.DB, conversationID)
	if err != nil {
		return err
	}
	if !moved {
		return s.transitionError(ctx, conversationID)
	}
	return nil
}

// Get returns one conversation by id, or ErrConversationNotFound.
func (s *EscalationService) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	conv, err := s.Repo.GetConversation(ctx, s.DB, conversationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	return conv, err
}

// Queue returns the PENDING conversations, oldest escalation first.
func (s *EscalationService) Queue(ctx context.Context) ([]domain.Conversation, error) {
	return s.Repo.ListPendingConversations(ctx, s.DB)
}

// Workload returns the conversations currently assigned to an agent.
func (s *EscalationService) Workload(ctx context.Context, agentID string) ([]domain.Conversation, error) {
	return s.Repo.ListAssignedConversations(ctx, s.DB, agentID)
}

// Channels returns every delivery channel conversations can be attributed
// to, ordered by name.
func (s *EscalationService) Channels(ctx context.Context) ([]domain.Channel, error) {
	return s.Repo.ListChannels(ctx, s.DB)
}

// AddChannel registers a delivery channel. Names are unique; registering an
// existing name returns ErrChannelTaken. Blank kinds default to "web".
func (s *EscalationService) AddChannel(ctx context.Context, name, kind string) (*domain.Channel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrChannelNotFound
	}
	if kind = strings.TrimSpace(kind); kind == "" {
		kind = "web"
	}
	if _, err := s.Repo.GetChannelByName(ctx, s.DB, name); err == nil {
		return nil, ErrChannelTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.Repo.CreateChannel(ctx, s.DB, name, kind)
}

// RemoveChannel soft-deletes a channel; existing conversations keep their
// attribution.
func (s *EscalationService) RemoveChannel(ctx context.Context, id string) error {
	err := s.Repo.DeleteChannel(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrChannelNotFound
	}
	return err
}

// createForSession creates a NONE conversation attributed to the default
// channel.
func (s *EscalationService) createForSession(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	channelID, err := s.Repo.DefaultChannelID(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateConversation(ctx, s.DB, sessionID, channelID)
}

// transitionError distinguishes "no such conversation" from "wrong state"
// after a guarded update matched zero rows.
func (s *EscalationService) transitionError(ctx context.Context, conversationID string) error {
	if _, err := s.Repo.GetConversation(ctx, s.DB, conversationID); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrConversationNotFound
	}
	return ErrInvalidTransition
}

// Package services – FlowService
//
// This file implements the FlowService, the orchestration around the flow
// engine: it loads the session snapshot, advances one turn, appends the turn
// to the response log, applies profile effects, persists the new snapshot,
// and triggers escalation when the flow reaches a handoff node.
//
// Ordering inside one advance is fixed: transcript append, then profile
// effects, then snapshot save. Concurrent advances for the same session are
// not serialized; the snapshot save is last-writer-wins.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/flow"
)

// FlowRepo defines the repository contract required by FlowService.
type FlowRepo interface {
	// LoadState returns the stored snapshot or gorm.ErrRecordNotFound.
	LoadState(ctx context.Context, db *gorm.DB, sessionID string) (*domain.SessionState, error)

	// SaveState upserts the snapshot (last writer wins).
	SaveState(ctx context.Context, db *gorm.DB, sessionID, blob string, lastActivity time.Time) error

	// AppendResponse appends one turn to the response log.
	AppendResponse(ctx context.Context, db *gorm.DB, row *domain.Response) (*domain.Response, error)

	// UpsertProfile applies a partial profile write keyed by session token.
	UpsertProfile(ctx context.Context, db *gorm.DB, sessionID string, patch map[string]any) (*domain.Profile, error)
}

// Escalator is the handoff trigger consumed by FlowService. Implemented by
// EscalationService; kept as an interface so flow tests can fake it.
type Escalator interface {
	RequestEscalation(ctx context.Context, sessionID, reason string) (*domain.Conversation, error)
}

// AdvanceResult is the handler-facing outcome of one advance call.
type AdvanceResult struct {
	// Step is the key of the node to render next; flow.StepDone when finished.
	Step string `json:"step"`
	// Prompt is the question text for the next node. Empty when Done.
	Prompt string `json:"prompt,omitempty"`
	// Widget names the input control the client should render.
	Widget string `json:"widget,omitempty"`
	// Options are the selectable choices, when the widget has any.
	Options []flow.Option `json:"options,omitempty"`
	// Done is set when the conversation reached its end.
	Done bool `json:"done"`
	// Clarify is set when the input did not resolve and the same question
	// is asked again.
	Clarify bool `json:"clarify,omitempty"`
	// Suggestions carries ranked search candidates on an ambiguous search
	// input; Remaining is how many further matches were cut off.
	Suggestions []string `json:"suggestions,omitempty"`
	Remaining   int      `json:"remaining,omitempty"`
	// Escalated is set when this turn handed the conversation to an agent;
	// ConversationID then identifies the handoff conversation.
	Escalated      bool   `json:"escalated,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// FlowService advances scripted conversations.
type FlowService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the flow repository used by this service.
	Repo FlowRepo
	// Graph is the conversation graph sessions advance over.
	Graph *flow.Graph
	// Escalation triggers the handoff when a turn lands on an escalation
	// node. Optional; nil disables the hook.
	Escalation Escalator

	// EscalationReason is recorded on conversations escalated from the flow.
	EscalationReason string
}

// NewFlowService constructs a FlowService over the given graph.
func NewFlowService(db *gorm.DB, r FlowRepo, g *flow.Graph, esc Escalator) *FlowService {
	return &FlowService{
		DB:               db,
		Repo:             r,
		Graph:            g,
		Escalation:       esc,
		EscalationReason: "user_requested",
	}
}

// turnRecorder adapts the repository append to the engine's Recorder.
type turnRecorder struct {
	db        *gorm.DB
	repo      FlowRepo
	sessionID string
	initial   bool
}

// Append implements flow.Recorder.
func (r *turnRecorder) Append(ctx context.Context, t flow.Turn) error {
	var opts datatypes.JSON
	if len(t.AvailableOptions) > 0 {
		b, err := json.Marshal(t.AvailableOptions)
		if err != nil {
			return err
		}
		opts = datatypes.JSON(b)
	}
	_, err := r.repo.AppendResponse(ctx, r.db, &domain.Response{
		SessionID:        r.sessionID,
		StepKey:          t.StepKey,
		Question:         t.Question,
		RawInput:         t.RawInput,
		NormalizedValue:  t.NormalizedValue,
		Widget:           string(t.Widget),
		AvailableOptions: opts,
		Category:         t.Category,
		IsInitial:        r.initial,
	})
	return err
}

// Start returns the opening question for a session, creating a fresh
// snapshot when none exists. Restarting a session that already has a
// snapshot re-renders its current node without consuming a turn.
func (s *FlowService) Start(ctx context.Context, sessionID string) (*AdvanceResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	st, fresh, err := s.loadOrBootstrap(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if fresh {
		if err := s.saveState(ctx, sessionID, st); err != nil {
			return nil, err
		}
		if _, err := s.Repo.UpsertProfile(ctx, s.DB, sessionID, map[string]any{
			"current_step": st.Step,
		}); err != nil {
			return nil, err
		}
	}
	if st.Done() {
		return &AdvanceResult{Step: flow.StepDone, Done: true}, nil
	}
	node, _ := s.Graph.Node(st.Step)
	return renderNode(node), nil
}

// Advance consumes one user turn for sessionID and returns what to render
// next. A session with no snapshot is bootstrapped at the start node first,
// so the very first post also works without a prior Start call.
func (s *FlowService) Advance(ctx context.Context, sessionID, input string) (*AdvanceResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	st, fresh, err := s.loadOrBootstrap(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	eng := flow.NewEngine(s.Graph, &turnRecorder{
		db:        s.DB,
		repo:      s.Repo,
		sessionID: sessionID,
		initial:   fresh,
	})
	res, err := eng.Advance(ctx, st, input)
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrInvalidState):
			return nil, ErrConversationDone
		case errors.Is(err, flow.ErrEmptyInput):
			return nil, ErrEmptyInput
		default:
			return nil, err
		}
	}

	// Profile effects, then the moved snapshot.
	patch := make(map[string]any, len(res.Effects)+1)
	for _, ef := range res.Effects {
		patch[string(ef.Field)] = ef.Value
	}
	if !res.Clarify {
		patch["current_step"] = st.Step
	}
	if len(patch) > 0 {
		if _, err := s.Repo.UpsertProfile(ctx, s.DB, sessionID, patch); err != nil {
			return nil, err
		}
	}
	if err := s.saveState(ctx, sessionID, st); err != nil {
		return nil, err
	}

	out := &AdvanceResult{
		Step:        st.Step,
		Done:        res.Done,
		Clarify:     res.Clarify,
		Suggestions: res.Suggestions,
		Remaining:   res.Remaining,
	}
	if !res.Done {
		rendered := renderNode(res.Node)
		out.Prompt = rendered.Prompt
		out.Widget = rendered.Widget
		out.Options = rendered.Options
	}

	if res.Escalate && s.Escalation != nil {
		conv, err := s.Escalation.RequestEscalation(ctx, sessionID, s.EscalationReason)
		if err != nil {
			return nil, err
		}
		out.Escalated = true
		out.ConversationID = conv.ID
	}
	return out, nil
}

// loadOrBootstrap returns the session's engine state, creating a fresh one
// positioned at the start node when no snapshot exists. A snapshot that no
// longer parses, or whose step names no node in the current graph, is also
// reset to the start; shipped graph changes must not strand old sessions.
func (s *FlowService) loadOrBootstrap(ctx context.Context, sessionID string) (*flow.State, bool, error) {
	row, err := s.Repo.LoadState(ctx, s.DB, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return flow.NewState(s.Graph), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	var st flow.State
	if err := json.Unmarshal([]byte(row.State), &st); err != nil {
		return flow.NewState(s.Graph), true, nil
	}
	if st.Step != flow.StepDone {
		if _, ok := s.Graph.Node(st.Step); !ok {
			return flow.NewState(s.Graph), true, nil
		}
	}
	return &st, false, nil
}

// saveState serializes and upserts the snapshot, stamping last activity.
func (s *FlowService) saveState(ctx context.Context, sessionID string, st *flow.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.Repo.SaveState(ctx, s.DB, sessionID, string(b), time.Now().UTC())
}

// renderNode projects a graph node into the client-facing shape.
func renderNode(n flow.Node) *AdvanceResult {
	return &AdvanceResult{
		Step:    n.Key,
		Prompt:  n.Prompt,
		Widget:  string(n.Widget),
		Options: n.Options,
	}
}

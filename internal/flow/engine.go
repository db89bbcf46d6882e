// Package flow – the advance engine.
//
// Advance is the single entry point per user turn. Within one call the
// ordering is fixed: the transcript append happens before side effects are
// resolved, and side effects are resolved before the next node is computed.
// Calls for the same session are NOT serialized here; if strict ordering is
// required the transport layer must allow only one in-flight advance per
// session (or accept the documented last-writer-wins race).
package flow

import (
	"context"
	"errors"
	"strings"
)

// Errors returned by Advance. They indicate client or programming mistakes,
// not transient conditions, and map to 4xx at the HTTP boundary.
var (
	// ErrInvalidState is returned when advancing a session that has already
	// reached the Done sentinel.
	ErrInvalidState = errors.New("flow: conversation already finished")

	// ErrUnknownStep is returned when the session's current step names no
	// node in the graph. Callers should reset the session to the start node.
	ErrUnknownStep = errors.New("flow: unknown step")

	// ErrEmptyInput is returned when a free-text node receives blank input.
	ErrEmptyInput = errors.New("flow: input must not be empty")
)

// SuggestionCap bounds the option list returned for ambiguous search input,
// matching the client widget's "Showing N of M results" behavior.
const SuggestionCap = 10

// Answer is one collected (question-key, value) pair. Answers are kept as an
// ordered slice so the collection order mirrors the question order.
type Answer struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

// State is the mutable per-session conversation state the engine advances.
// It is the unit serialized into the session store snapshot.
type State struct {
	Step    string   `json:"current_step"`
	Answers []Answer `json:"answers,omitempty"`
}

// NewState returns a State positioned at the graph's start node.
func NewState(g *Graph) *State {
	return &State{Step: g.StartKey()}
}

// Set records an answer, replacing any earlier value for the same key while
// keeping the original position (upsert, not append).
func (s *State) Set(key, value string) {
	for i := range s.Answers {
		if s.Answers[i].Key == key {
			s.Answers[i].Value = value
			return
		}
	}
	s.Answers = append(s.Answers, Answer{Key: key, Value: value})
}

// Get returns the collected answer for key, if any.
func (s *State) Get(key string) (string, bool) {
	for _, a := range s.Answers {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Done reports whether the session has reached the end of the flow.
func (s *State) Done() bool { return s.Step == StepDone }

// Turn is the transcript record of one advance call: what was asked, what
// came back, and how it was normalized. The engine hands it to the Recorder
// before applying any other side effect so the transcript reflects every
// turn, fallback ones included.
type Turn struct {
	StepKey          string
	Question         string
	RawInput         string
	NormalizedValue  string
	Widget           Widget
	AvailableOptions []string
	Category         string
}

// Recorder receives one Turn per advance, in order. Implementations append
// to the durable response log; a nil Recorder disables recording.
type Recorder interface {
	Append(ctx context.Context, t Turn) error
}

// Result describes the outcome of one advance: the node to render next, the
// profile writes to apply, and whether the flow escalated or finished.
type Result struct {
	// Node is the next node to render. Zero-valued when Done.
	Node Node
	// Effects are the resolved profile writes for this transition.
	Effects []Effect
	// Turn is the transcript record produced for this advance.
	Turn Turn
	// Escalate is set when the transition reached an escalation trigger.
	Escalate bool
	// Done is set when the flow reached the terminal sentinel.
	Done bool
	// Clarify is set when the input did not resolve and the same node is
	// re-prompted. Suggestions/Remaining carry search candidates when the
	// node is a search list.
	Clarify     bool
	Suggestions []string
	Remaining   int
}

// Engine advances sessions over a fixed Graph.
type Engine struct {
	graph *Graph
	rec   Recorder
}

// NewEngine returns an Engine over g. rec may be nil to disable transcript
// recording (tests, dry runs).
func NewEngine(g *Graph, rec Recorder) *Engine {
	return &Engine{graph: g, rec: rec}
}

// Graph exposes the engine's graph for bootstrap validation.
func (e *Engine) Graph() *Graph { return e.graph }

// Advance consumes one user turn and moves the session forward.
//
// Resolution order:
//  1. explicit option match (id first, label second, case-insensitive)
//  2. the node's free-text classifier, falling back to a clarify re-prompt
//     with ranked suggestions when no match clears the matcher
//  3. a generic re-prompt of the same node with the same options
//
// The transcript append happens before effects are resolved; an append
// failure aborts the advance without mutating state.
func (e *Engine) Advance(ctx context.Context, s *State, input string) (Result, error) {
	if s.Done() {
		return Result{}, ErrInvalidState
	}
	cur, ok := e.graph.Node(s.Step)
	if !ok {
		return Result{}, ErrUnknownStep
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" && (cur.Widget == WidgetFreeText || cur.Widget == WidgetSearchList) {
		return Result{}, ErrEmptyInput
	}

	// Resolve the transition first so the turn can carry the normalized
	// value, then append, then apply.
	res := e.resolve(cur, trimmed)

	res.Turn = Turn{
		StepKey:          cur.Key,
		Question:         cur.Prompt,
		RawInput:         input,
		NormalizedValue:  res.Turn.NormalizedValue,
		Widget:           cur.Widget,
		AvailableOptions: cur.optionIDs(),
		Category:         cur.Category,
	}
	if e.rec != nil {
		if err := e.rec.Append(ctx, res.Turn); err != nil {
			return Result{}, err
		}
	}

	// Apply collected answers and step mutation only after the append.
	if !res.Clarify {
		if res.Turn.NormalizedValue != "" {
			s.Set(cur.Key, res.Turn.NormalizedValue)
		}
		if res.Done {
			s.Step = StepDone
		} else {
			s.Step = res.Node.Key
		}
	}
	return res, nil
}

// resolve computes the transition for (node, input) without touching state.
func (e *Engine) resolve(cur Node, input string) Result {
	// Terminal node: any further input ends the flow.
	if cur.terminal() {
		r := Result{Done: true}
		r.Turn.NormalizedValue = strings.TrimSpace(input)
		return r
	}

	// 1) Explicit option mapping.
	if opt, ok := cur.matchOption(input); ok {
		if t, ok := cur.Transitions[opt.ID]; ok {
			return e.land(t.Target, opt.ID, t.Effects)
		}
		// Option defined without a dedicated transition: fall through to
		// the node's unconditional target when present.
		if cur.Next != "" {
			return e.land(cur.Next, opt.ID, cur.NextEffects)
		}
	}

	// Multi-select: all comma-separated parts must be known options.
	if cur.Widget == WidgetMultiSelect && cur.Next != "" {
		if norm, ok := matchMulti(cur, input); ok {
			return e.land(cur.Next, norm, cur.NextEffects)
		}
	}

	// 2) Free-text classification.
	if cur.FreeText != nil {
		if val, ok := cur.FreeText.Matcher.Match(input); ok {
			return e.land(cur.FreeText.Target, val, cur.FreeText.Effects)
		}
		sugg, remaining := cur.FreeText.Matcher.Suggest(input, SuggestionCap)
		return Result{Node: cur, Clarify: true, Suggestions: sugg, Remaining: remaining}
	}

	// Unconditional hop for nodes without options (info interstitials).
	if len(cur.Options) == 0 && len(cur.Transitions) == 0 && cur.Next != "" {
		return e.land(cur.Next, strings.TrimSpace(input), cur.NextEffects)
	}

	// 3) Generic "I didn't understand": re-prompt the same node.
	return Result{Node: cur, Clarify: true}
}

// land builds the Result for arriving at target with the given normalized
// value, resolving effect values and the escalation flag.
func (e *Engine) land(target, normalized string, effects []Effect) Result {
	r := Result{}
	r.Turn.NormalizedValue = normalized
	r.Effects = resolveEffects(effects, normalized)
	if target == StepDone {
		r.Done = true
		return r
	}
	next, _ := e.graph.Node(target) // validated at construction
	r.Node = next
	r.Escalate = next.Escalate
	return r
}

// matchMulti validates a comma-separated multi-select answer and returns the
// canonical joined value (option ids in the user's order, deduplicated).
func matchMulti(n Node, input string) (string, bool) {
	parts := strings.Split(input, ",")
	seen := make(map[string]struct{}, len(parts))
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		opt, ok := n.matchOption(p)
		if !ok {
			return "", false
		}
		if _, dup := seen[opt.ID]; dup {
			continue
		}
		seen[opt.ID] = struct{}{}
		ids = append(ids, opt.ID)
	}
	if len(ids) == 0 {
		return "", false
	}
	return strings.Join(ids, ","), true
}

// resolveEffects substitutes the normalized turn value into effects declared
// with an empty value.
func resolveEffects(effects []Effect, normalized string) []Effect {
	if len(effects) == 0 {
		return nil
	}
	out := make([]Effect, len(effects))
	for i, ef := range effects {
		if ef.Value == "" {
			ef.Value = normalized
		}
		out[i] = ef
	}
	return out
}

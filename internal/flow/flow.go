// Package flow implements the scripted conversation state machine: an
// immutable graph of prompt-and-widget nodes walked one user turn at a time.
// It is intentionally small and dependency-free, following the same rules as
// the rest of the core libraries in this repo:
//
//   - No logging in the library (callers decide how/what to log)
//   - Immutable, read-only graph after construction (safe for concurrent use)
//   - Deterministic transitions (pure function of state + input)
//   - Persistence decoupled behind a narrow Recorder interface
//
// The graph is built once at process start from explicit node definitions
// and validated up front: every transition target must name an existing node
// or the Done sentinel, so a running engine can never walk off the graph.
package flow

import (
	"errors"
	"strings"
)

// StepDone is the sentinel step key marking the end of the scripted flow.
// No node may use it as its own key, and no further advances are valid once
// a session reaches it.
const StepDone = "done"

// Widget identifies the input affordance a node renders on the client.
type Widget string

// Widget kinds understood by the chat widget.
const (
	WidgetFreeText     Widget = "free_text"
	WidgetSingleSelect Widget = "single_select"
	WidgetMultiSelect  Widget = "multi_select"
	WidgetSearchList   Widget = "search_list"
)

// Field names a profile attribute a transition may write.
type Field string

// Profile fields writable as transition side effects.
const (
	FieldLanguage      Field = "language"
	FieldGender        Field = "gender"
	FieldState         Field = "state"
	FieldLGA           Field = "lga"
	FieldAgeGroup      Field = "age_group"
	FieldMaritalStatus Field = "marital_status"
	FieldCurrentFPM    Field = "current_fpm"
	FieldConcernType   Field = "concern_type"
	FieldIntent        Field = "intent"
)

// Effect is a declarative profile write attached to a transition. An empty
// Value means "use the turn's normalized value" (the matched option id or
// the classifier's match).
type Effect struct {
	Field Field
	Value string
}

// Option is one selectable choice on a select or search node. ID is the
// stable value matched against user input and stored as the normalized
// answer; Label is the display text.
type Option struct {
	ID    string
	Label string
}

// Transition maps a selected option to the next node plus its side effects.
type Transition struct {
	Target  string
	Effects []Effect
}

// Matcher classifies free text on search nodes. Match returns the canonical
// value when the input resolves unambiguously; Suggest returns up to limit
// candidates plus the count of matches beyond the cap.
type Matcher interface {
	Match(input string) (value string, ok bool)
	Suggest(input string, limit int) (matches []string, remaining int)
}

// acceptAny is the Matcher used when no canonical list exists for a search
// node: every non-blank input matches verbatim and there is nothing to
// suggest.
type acceptAny struct{}

func (acceptAny) Match(input string) (string, bool) {
	v := strings.TrimSpace(input)
	return v, v != ""
}

func (acceptAny) Suggest(string, int) ([]string, int) { return nil, 0 }

// AcceptAny returns a Matcher that accepts any non-blank input verbatim.
// Deployments without the LGA data file use it so the LGA step degrades to
// free text instead of dead-ending.
func AcceptAny() Matcher { return acceptAny{} }

// FreeTextRule describes how a node consumes free text: the matcher that
// classifies it, where a successful match leads, and the effects applied
// with the matched value.
type FreeTextRule struct {
	Matcher Matcher
	Target  string
	Effects []Effect
}

// Node is one prompt-and-widget unit of the conversation graph.
//
// Exactly one of the outgoing shapes applies per input:
//   - Transitions, keyed by option id, for select widgets
//   - FreeText for classified free text (search widgets)
//   - Next, a single unconditional target (multi-select and info nodes)
//
// A node with none of the three is terminal: advancing from it ends the flow.
type Node struct {
	Key         string
	Prompt      string
	Widget      Widget
	Options     []Option
	Transitions map[string]Transition
	FreeText    *FreeTextRule
	Next        string
	NextEffects []Effect

	// Escalate marks the node as an escalation trigger: reaching it hands
	// the conversation to the assignment engine.
	Escalate bool

	// Category tags the response-log rows produced at this node.
	Category string
}

// terminal reports whether the node has no outgoing shape at all.
func (n Node) terminal() bool {
	return len(n.Transitions) == 0 && n.FreeText == nil && n.Next == ""
}

// optionIDs returns the ordered option ids, used for the transcript's
// available-options column.
func (n Node) optionIDs() []string {
	if len(n.Options) == 0 {
		return nil
	}
	out := make([]string, len(n.Options))
	for i, o := range n.Options {
		out[i] = o.ID
	}
	return out
}

// matchOption resolves user input against the node's options, matching the
// option id first and the display label second, both case-insensitively.
func (n Node) matchOption(input string) (Option, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	for _, o := range n.Options {
		if strings.ToLower(o.ID) == in {
			return o, true
		}
	}
	for _, o := range n.Options {
		if strings.ToLower(o.Label) == in {
			return o, true
		}
	}
	return Option{}, false
}

// Graph is the immutable conversation graph: a start node plus a node set
// keyed by step key. Build it once with New and share it by reference.
type Graph struct {
	start string
	nodes map[string]Node
}

// New validates the node set and returns an immutable Graph.
//
// Validation rules:
//   - start must name a defined node
//   - no node may be keyed StepDone
//   - every transition target, free-text target, and Next must name a
//     defined node or StepDone
func New(start string, nodes []Node) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, errors.New("flow: empty node set")
	}
	m := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if n.Key == "" {
			return nil, errors.New("flow: node with empty key")
		}
		if n.Key == StepDone {
			return nil, errors.New("flow: node key collides with done sentinel")
		}
		if _, dup := m[n.Key]; dup {
			return nil, errors.New("flow: duplicate node key " + n.Key)
		}
		m[n.Key] = n
	}
	if _, ok := m[start]; !ok {
		return nil, errors.New("flow: start node " + start + " not defined")
	}
	check := func(from, target string) error {
		if target == StepDone {
			return nil
		}
		if _, ok := m[target]; !ok {
			return errors.New("flow: node " + from + " targets undefined node " + target)
		}
		return nil
	}
	for _, n := range m {
		for _, t := range n.Transitions {
			if err := check(n.Key, t.Target); err != nil {
				return nil, err
			}
		}
		if n.FreeText != nil {
			if n.FreeText.Matcher == nil {
				return nil, errors.New("flow: node " + n.Key + " has a free-text rule without a matcher")
			}
			if err := check(n.Key, n.FreeText.Target); err != nil {
				return nil, err
			}
		}
		if n.Next != "" {
			if err := check(n.Key, n.Next); err != nil {
				return nil, err
			}
		}
	}
	return &Graph{start: start, nodes: m}, nil
}

// Start returns the graph's entry node.
func (g *Graph) Start() Node { return g.nodes[g.start] }

// StartKey returns the entry node's step key.
func (g *Graph) StartKey() string { return g.start }

// Node looks up a node by step key.
func (g *Graph) Node(key string) (Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Valid reports whether key names a node or the Done sentinel. Used by the
// session bootstrap to decide between resuming and resetting to start.
func (g *Graph) Valid(key string) bool {
	if key == StepDone {
		return true
	}
	_, ok := g.nodes[key]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

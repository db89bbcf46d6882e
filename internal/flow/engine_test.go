package flow

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeMatcher resolves from a canned table and suggests a fixed candidate list.
type fakeMatcher struct {
	table       map[string]string
	suggestions []string
	remaining   int
}

func (f fakeMatcher) Match(input string) (string, bool) {
	v, ok := f.table[input]
	return v, ok
}

func (f fakeMatcher) Suggest(string, int) ([]string, int) {
	return f.suggestions, f.remaining
}

type captureRecorder struct {
	turns []Turn
	err   error
}

func (r *captureRecorder) Append(_ context.Context, t Turn) error {
	if r.err != nil {
		return r.err
	}
	r.turns = append(r.turns, t)
	return nil
}

func testGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New("color", []Node{
		{
			Key:     "color",
			Prompt:  "Pick a color",
			Widget:  WidgetSingleSelect,
			Options: []Option{{ID: "Red", Label: "Red"}, {ID: "Blue", Label: "Blue"}},
			Transitions: map[string]Transition{
				"Red":  {Target: "size", Effects: []Effect{{Field: FieldConcernType}}},
				"Blue": {Target: StepDone, Effects: []Effect{{Field: FieldIntent, Value: "fixed"}}},
			},
			Category: "test",
		},
		{
			Key:     "size",
			Prompt:  "Pick sizes",
			Widget:  WidgetMultiSelect,
			Options: []Option{{ID: "S", Label: "Small"}, {ID: "M", Label: "Medium"}, {ID: "L", Label: "Large"}},
			Next:    "city",
		},
		{
			Key:    "city",
			Prompt: "Which city?",
			Widget: WidgetSearchList,
			FreeText: &FreeTextRule{
				Matcher: fakeMatcher{
					table:       map[string]string{"ikj": "Ikeja"},
					suggestions: []string{"Ikeja", "Ikorodu"},
					remaining:   3,
				},
				Target:  "handoff",
				Effects: []Effect{{Field: FieldLGA}},
			},
		},
		{
			Key:      "handoff",
			Prompt:   "Connecting you now",
			Widget:   WidgetFreeText,
			Escalate: true,
		},
		{
			Key:    "interstitial",
			Prompt: "Press anything",
			Next:   "city",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestAdvance_FinishedAndUnknown(t *testing.T) {
	e := NewEngine(testGraph(t), nil)

	s := &State{Step: StepDone}
	if _, err := e.Advance(context.Background(), s, "hi"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	s = &State{Step: "ghost"}
	if _, err := e.Advance(context.Background(), s, "hi"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestAdvance_EmptyInputOnTextWidgets(t *testing.T) {
	e := NewEngine(testGraph(t), nil)
	s := &State{Step: "city"}
	if _, err := e.Advance(context.Background(), s, "   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	s = &State{Step: "handoff"}
	if _, err := e.Advance(context.Background(), s, ""); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput on free text, got %v", err)
	}
}

func TestAdvance_OptionTransition(t *testing.T) {
	rec := &captureRecorder{}
	e := NewEngine(testGraph(t), rec)
	s := NewState(e.Graph())

	res, err := e.Advance(context.Background(), s, " red ")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Node.Key != "size" || res.Done || res.Clarify {
		t.Fatalf("unexpected result: %+v", res)
	}
	// Empty effect value resolves to the normalized option id.
	if want := []Effect{{Field: FieldConcernType, Value: "Red"}}; !reflect.DeepEqual(res.Effects, want) {
		t.Fatalf("effects = %v", res.Effects)
	}
	if s.Step != "size" {
		t.Fatalf("state step = %q", s.Step)
	}
	if v, ok := s.Get("color"); !ok || v != "Red" {
		t.Fatalf("answer = %q %v", v, ok)
	}

	if len(rec.turns) != 1 {
		t.Fatalf("turns = %d", len(rec.turns))
	}
	turn := rec.turns[0]
	if turn.StepKey != "color" || turn.Question != "Pick a color" ||
		turn.RawInput != " red " || turn.NormalizedValue != "Red" ||
		turn.Widget != WidgetSingleSelect || turn.Category != "test" {
		t.Fatalf("turn = %+v", turn)
	}
	if !reflect.DeepEqual(turn.AvailableOptions, []string{"Red", "Blue"}) {
		t.Fatalf("options = %v", turn.AvailableOptions)
	}
}

func TestAdvance_ExplicitEffectValueAndDone(t *testing.T) {
	e := NewEngine(testGraph(t), nil)
	s := NewState(e.Graph())

	res, err := e.Advance(context.Background(), s, "Blue")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Done || !s.Done() {
		t.Fatalf("expected done, got %+v step=%q", res, s.Step)
	}
	if want := []Effect{{Field: FieldIntent, Value: "fixed"}}; !reflect.DeepEqual(res.Effects, want) {
		t.Fatalf("effects = %v", res.Effects)
	}
}

func TestAdvance_ClarifyKeepsState(t *testing.T) {
	rec := &captureRecorder{}
	e := NewEngine(testGraph(t), rec)
	s := NewState(e.Graph())

	res, err := e.Advance(context.Background(), s, "Green")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Clarify || res.Node.Key != "color" {
		t.Fatalf("expected clarify re-prompt, got %+v", res)
	}
	if s.Step != "color" || len(s.Answers) != 0 {
		t.Fatalf("clarify mutated state: %+v", s)
	}
	// Fallback turns still hit the transcript.
	if len(rec.turns) != 1 || rec.turns[0].NormalizedValue != "" {
		t.Fatalf("turns = %+v", rec.turns)
	}
}

func TestAdvance_MultiSelect(t *testing.T) {
	e := NewEngine(testGraph(t), nil)

	s := &State{Step: "size"}
	res, err := e.Advance(context.Background(), s, "m, small ,M")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Node.Key != "city" {
		t.Fatalf("landed on %q", res.Node.Key)
	}
	if v, _ := s.Get("size"); v != "M,S" {
		t.Fatalf("normalized multi answer = %q", v)
	}

	s = &State{Step: "size"}
	res, err = e.Advance(context.Background(), s, "M,XXL")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Clarify || s.Step != "size" {
		t.Fatalf("unknown part must clarify: %+v", res)
	}
}

func TestAdvance_FreeTextMatchAndEscalate(t *testing.T) {
	e := NewEngine(testGraph(t), nil)
	s := &State{Step: "city"}

	res, err := e.Advance(context.Background(), s, "ikj")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Node.Key != "handoff" || !res.Escalate {
		t.Fatalf("expected escalating handoff, got %+v", res)
	}
	if want := []Effect{{Field: FieldLGA, Value: "Ikeja"}}; !reflect.DeepEqual(res.Effects, want) {
		t.Fatalf("effects = %v", res.Effects)
	}
	if v, _ := s.Get("city"); v != "Ikeja" {
		t.Fatalf("answer = %q", v)
	}
}

func TestAdvance_FreeTextClarifyWithSuggestions(t *testing.T) {
	e := NewEngine(testGraph(t), nil)
	s := &State{Step: "city"}

	res, err := e.Advance(context.Background(), s, "ik")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Clarify || res.Node.Key != "city" {
		t.Fatalf("expected clarify, got %+v", res)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"Ikeja", "Ikorodu"}) || res.Remaining != 3 {
		t.Fatalf("suggestions = %v remaining = %d", res.Suggestions, res.Remaining)
	}
	if s.Step != "city" {
		t.Fatalf("clarify mutated step: %q", s.Step)
	}
}

func TestAdvance_UnconditionalHop(t *testing.T) {
	e := NewEngine(testGraph(t), nil)
	s := &State{Step: "interstitial"}

	res, err := e.Advance(context.Background(), s, "ok then")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Node.Key != "city" || s.Step != "city" {
		t.Fatalf("hop failed: %+v step=%q", res, s.Step)
	}
	if v, _ := s.Get("interstitial"); v != "ok then" {
		t.Fatalf("answer = %q", v)
	}
}

func TestAdvance_TerminalNodeEndsFlow(t *testing.T) {
	e := NewEngine(testGraph(t), nil)
	s := &State{Step: "handoff"}

	res, err := e.Advance(context.Background(), s, "thanks")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Done || !s.Done() {
		t.Fatalf("terminal node must end the flow: %+v", res)
	}
}

func TestAdvance_RecorderFailureAborts(t *testing.T) {
	boom := errors.New("append failed")
	e := NewEngine(testGraph(t), &captureRecorder{err: boom})
	s := NewState(e.Graph())

	if _, err := e.Advance(context.Background(), s, "Red"); !errors.Is(err, boom) {
		t.Fatalf("expected recorder error, got %v", err)
	}
	if s.Step != "color" || len(s.Answers) != 0 {
		t.Fatalf("failed append must not mutate state: %+v", s)
	}
}

package flow

import (
	"context"
	"testing"
)

func honeyEngine(t *testing.T) *Engine {
	t.Helper()
	g, err := HoneyGraph(fakeMatcher{table: map[string]string{"lagos": "Lagos"}},
		fakeMatcher{table: map[string]string{"ikeja": "Ikeja"}})
	if err != nil {
		t.Fatalf("HoneyGraph: %v", err)
	}
	return NewEngine(g, nil)
}

func TestHoneyGraph_Builds(t *testing.T) {
	e := honeyEngine(t)
	g := e.Graph()
	if g.StartKey() != StepLanguage {
		t.Fatalf("start = %q", g.StartKey())
	}
	for _, key := range []string{
		StepLanguage, StepGender, StepState, StepLGA, StepAge, StepMarital,
		StepFPM, StepNextAction, StepHumanAgent, StepFindClinic, StepGoodbye,
		StepNotCovered, StepMethodsInfo, "contraception", "emergency_product",
		"duration", "sex_enhancement", "lubricant",
	} {
		if _, ok := g.Node(key); !ok {
			t.Fatalf("node %q missing", key)
		}
	}
	if agent, _ := g.Node(StepHumanAgent); !agent.Escalate {
		t.Fatalf("human agent node must escalate")
	}
}

func TestHoneyGraph_AcceptAnyLGA(t *testing.T) {
	// Deployments without the LGA data file fall back to free text.
	if _, err := HoneyGraph(AcceptAny(), AcceptAny()); err != nil {
		t.Fatalf("HoneyGraph with AcceptAny: %v", err)
	}
}

func TestHoneyGraph_OnboardingWalk(t *testing.T) {
	e := honeyEngine(t)
	s := NewState(e.Graph())
	ctx := context.Background()

	steps := []struct {
		input    string
		wantStep string
	}{
		{"English", StepGender},
		{"Female", StepState},
		{"lagos", StepLGA},
		{"ikeja", StepAge},
		{"18-24", StepMarital},
		{"Single", StepFPM},
		{"How to prevent pregnancy", "contraception"},
		{"Prevent in future", "duration"},
		{"1-2 years", StepMethodsInfo},
		{"Side effects", StepNextAction},
		{"End this chat", StepGoodbye},
	}
	for _, st := range steps {
		res, err := e.Advance(ctx, s, st.input)
		if err != nil {
			t.Fatalf("Advance(%q): %v", st.input, err)
		}
		if res.Clarify {
			t.Fatalf("Advance(%q) clarified unexpectedly", st.input)
		}
		if s.Step != st.wantStep {
			t.Fatalf("after %q: step = %q, want %q", st.input, s.Step, st.wantStep)
		}
	}

	// Demographic answers accumulated along the way.
	for key, want := range map[string]string{
		StepLanguage: "English",
		StepGender:   "Female",
		StepState:    "Lagos",
		StepLGA:      "Ikeja",
		StepAge:      "18-24",
		StepMarital:  "Single",
	} {
		if v, ok := s.Get(key); !ok || v != want {
			t.Fatalf("answer %q = %q %v, want %q", key, v, ok, want)
		}
	}

	// Goodbye is terminal.
	res, err := e.Advance(ctx, s, "bye")
	if err != nil {
		t.Fatalf("goodbye turn: %v", err)
	}
	if !res.Done || !s.Done() {
		t.Fatalf("expected done after goodbye, got %+v", res)
	}
}

func TestHoneyGraph_EscalationPath(t *testing.T) {
	e := honeyEngine(t)
	s := &State{Step: StepFPM}

	res, err := e.Advance(context.Background(), s, "Talk to a human agent")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Escalate || res.Node.Key != StepHumanAgent {
		t.Fatalf("expected escalation, got %+v", res)
	}
}

func TestHoneyGraph_IntentEffects(t *testing.T) {
	e := honeyEngine(t)
	s := &State{Step: StepFPM}

	res, err := e.Advance(context.Background(), s, "How to get pregnant")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if res.Node.Key != StepNotCovered {
		t.Fatalf("landed on %q", res.Node.Key)
	}
	found := false
	for _, ef := range res.Effects {
		if ef.Field == FieldIntent && ef.Value == IntentGetPregnant {
			found = true
		}
	}
	if !found {
		t.Fatalf("intent effect missing: %v", res.Effects)
	}
}

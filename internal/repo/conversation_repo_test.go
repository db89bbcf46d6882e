package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
)

// mustAgent inserts an agent in the given presence state.
func mustAgent(t *testing.T, db *gorm.DB, name string, status string, maxChats, priority int) *domain.Agent {
	t.Helper()
	a, err := CreateAgent(context.Background(), db, name, name+"@test.local", "x", "agent", maxChats, priority)
	if err != nil {
		t.Fatalf("create agent %s: %v", name, err)
	}
	if status != domain.AgentOffline {
		if err := SetAgentStatus(context.Background(), db, a.ID, status); err != nil {
			t.Fatalf("set status: %v", err)
		}
		a.Status = status
	}
	return a
}

// mustPending creates a conversation and escalates it.
func mustPending(t *testing.T, db *gorm.DB, sessionID string) *domain.Conversation {
	t.Helper()
	ctx := context.Background()
	conv, err := CreateConversation(ctx, db, sessionID, "ch-1")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	ok, err := MarkPending(ctx, db, conv.ID, "user_request")
	if err != nil || !ok {
		t.Fatalf("mark pending: %v %v", ok, err)
	}
	return conv
}

func TestConversation_Lifecycle(t *testing.T) {
	db := newTestDB(t, "repo-conv-lifecycle")
	ctx := context.Background()
	agent := mustAgent(t, db, "ada", domain.AgentOnline, 5, 1)

	conv, err := CreateConversation(ctx, db, "s1", "ch-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if conv.Status != domain.EscalationNone {
		t.Fatalf("fresh status = %q", conv.Status)
	}

	// NONE -> PENDING, once.
	ok, err := MarkPending(ctx, db, conv.ID, "user_request")
	if err != nil || !ok {
		t.Fatalf("pending: %v %v", ok, err)
	}
	ok, err = MarkPending(ctx, db, conv.ID, "again")
	if err != nil || ok {
		t.Fatalf("re-pending must be a no-op: %v %v", ok, err)
	}
	got, err := GetConversation(ctx, db, conv.ID)
	if err != nil || got.Status != domain.EscalationPending || got.EscalatedAt == nil {
		t.Fatalf("pending row: %+v, %v", got, err)
	}
	if got.Reason == nil || *got.Reason != "user_request" {
		t.Fatalf("first reason must stick: %+v", got.Reason)
	}

	// PENDING -> ASSIGNED.
	assigned, picked, err := AssignAgent(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if picked.ID != agent.ID {
		t.Fatalf("picked %s, want %s", picked.ID, agent.ID)
	}
	if assigned.Status != domain.EscalationAssigned || assigned.AssignedAgentID == nil || *assigned.AssignedAgentID != agent.ID {
		t.Fatalf("assigned row: %+v", assigned)
	}
	load, err := AgentLoad(ctx, db, agent.ID)
	if err != nil || load != 1 {
		t.Fatalf("load = %d, %v", load, err)
	}

	// Assigning again fails: the row is no longer PENDING.
	if _, _, err := AssignAgent(ctx, db, conv.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("double assign: %v", err)
	}

	// ASSIGNED -> RESOLVED clears the agent.
	ok, err = Resolve(ctx, db, conv.ID)
	if err != nil || !ok {
		t.Fatalf("resolve: %v %v", ok, err)
	}
	got, _ = GetConversation(ctx, db, conv.ID)
	if got.Status != domain.EscalationResolved || got.AssignedAgentID != nil || got.ResolvedAt == nil {
		t.Fatalf("resolved row: %+v", got)
	}
	if load, _ := AgentLoad(ctx, db, agent.ID); load != 0 {
		t.Fatalf("load after resolve = %d", load)
	}
	if ok, err := Resolve(ctx, db, conv.ID); err != nil || ok {
		t.Fatalf("double resolve: %v %v", ok, err)
	}
}

func TestAssignAgent_LeastLoadedThenPriority(t *testing.T) {
	db := newTestDB(t, "repo-conv-ranking")
	ctx := context.Background()

	busy := mustAgent(t, db, "busy", domain.AgentOnline, 5, 1)
	idle := mustAgent(t, db, "idle", domain.AgentOnline, 5, 50)
	mustAgent(t, db, "away", domain.AgentAway, 5, 1)

	// Give busy one live assignment.
	first := mustPending(t, db, "s-warmup")
	if _, err := AssignTo(ctx, db, first.ID, busy.ID); err != nil {
		t.Fatalf("warmup assign: %v", err)
	}

	// Least loaded wins even with a worse priority.
	conv := mustPending(t, db, "s-next")
	_, picked, err := AssignAgent(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if picked.ID != idle.ID {
		t.Fatalf("picked %s, want idle", picked.Name)
	}

	// At equal load, the better (lower) priority wins.
	conv = mustPending(t, db, "s-tie")
	_, picked, err = AssignAgent(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("tie assign: %v", err)
	}
	if picked.ID != busy.ID {
		t.Fatalf("tie picked %s, want busy (priority 1)", picked.Name)
	}
}

func TestAssignAgent_PoolExhausted(t *testing.T) {
	db := newTestDB(t, "repo-conv-exhausted")
	ctx := context.Background()

	solo := mustAgent(t, db, "solo", domain.AgentOnline, 1, 1)
	mustAgent(t, db, "offline", domain.AgentOffline, 5, 1)

	first := mustPending(t, db, "s-a")
	if _, _, err := AssignAgent(ctx, db, first.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	// solo is at capacity; the second conversation waits.
	second := mustPending(t, db, "s-b")
	if _, _, err := AssignAgent(ctx, db, second.ID); !errors.Is(err, ErrNoAgentAvailable) {
		t.Fatalf("expected ErrNoAgentAvailable, got %v", err)
	}
	got, _ := GetConversation(ctx, db, second.ID)
	if got.Status != domain.EscalationPending {
		t.Fatalf("failed assignment must keep PENDING, got %q", got.Status)
	}

	// Resolving frees the slot and the queue drains.
	if ok, err := Resolve(ctx, db, first.ID); err != nil || !ok {
		t.Fatalf("resolve: %v %v", ok, err)
	}
	if _, picked, err := AssignAgent(ctx, db, second.ID); err != nil || picked.ID != solo.ID {
		t.Fatalf("drain: %v", err)
	}
}

func TestAssignAgent_OverflowSinkIsLastResort(t *testing.T) {
	db := newTestDB(t, "repo-conv-sink")
	ctx := context.Background()

	if err := Seed(ctx, db, 100); err != nil {
		t.Fatalf("seed: %v", err)
	}
	human := mustAgent(t, db, "ada", domain.AgentOnline, 5, 1)

	// A loaded human still beats the empty sink as long as a slot is free.
	for i := 0; i < 5; i++ {
		conv := mustPending(t, db, fmt.Sprintf("s-%d", i))
		_, picked, err := AssignAgent(ctx, db, conv.ID)
		if err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
		if picked.ID != human.ID {
			t.Fatalf("assign %d picked %q, want the human agent", i, picked.Name)
		}
	}

	// Only a full pool falls through to the sink.
	conv := mustPending(t, db, "s-overflow")
	_, picked, err := AssignAgent(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("overflow assign: %v", err)
	}
	if !picked.System {
		t.Fatalf("overflow picked %q, want the system sink", picked.Name)
	}
}

func TestAssignAgent_ConcurrentRespectsCapacity(t *testing.T) {
	db := newTestDB(t, "repo-conv-race")
	ctx := context.Background()

	// One connection keeps sqlite happy under concurrent writers; the
	// goroutines still race for the pool and the PENDING status guard.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	ada := mustAgent(t, db, "ada", domain.AgentOnline, 2, 1)
	ben := mustAgent(t, db, "ben", domain.AgentOnline, 1, 1)
	capacity := 3

	const n = 6
	convs := make([]*domain.Conversation, n)
	for i := range convs {
		convs[i] = mustPending(t, db, fmt.Sprintf("s-race-%d", i))
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, _, errs[i] = AssignAgent(ctx, db, convs[i].ID)
		}(i)
	}
	close(start)
	wg.Wait()

	assigned := 0
	for i, err := range errs {
		switch {
		case err == nil:
			assigned++
		case errors.Is(err, ErrNoAgentAvailable):
		default:
			t.Fatalf("assign %d: %v", i, err)
		}
	}
	if assigned != capacity {
		t.Fatalf("assigned = %d, want %d", assigned, capacity)
	}
	for _, ag := range []*domain.Agent{ada, ben} {
		load, err := AgentLoad(ctx, db, ag.ID)
		if err != nil {
			t.Fatalf("load %s: %v", ag.Name, err)
		}
		if load > int64(ag.MaxChats) {
			t.Fatalf("%s load %d exceeds max %d", ag.Name, load, ag.MaxChats)
		}
	}
	queue, err := ListPendingConversations(ctx, db)
	if err != nil || len(queue) != n-capacity {
		t.Fatalf("pending after race = %d, %v", len(queue), err)
	}
}

func TestAssignTo_CapacityAndPresenceChecks(t *testing.T) {
	db := newTestDB(t, "repo-conv-manual")
	ctx := context.Background()

	full := mustAgent(t, db, "full", domain.AgentOnline, 1, 1)
	away := mustAgent(t, db, "away", domain.AgentAway, 5, 1)

	warm := mustPending(t, db, "s-warm")
	if _, err := AssignTo(ctx, db, warm.ID, full.ID); err != nil {
		t.Fatalf("warmup: %v", err)
	}

	conv := mustPending(t, db, "s-target")
	if _, err := AssignTo(ctx, db, conv.ID, full.ID); !errors.Is(err, ErrNoAgentAvailable) {
		t.Fatalf("full agent: %v", err)
	}
	if _, err := AssignTo(ctx, db, conv.ID, away.ID); !errors.Is(err, ErrNoAgentAvailable) {
		t.Fatalf("away agent: %v", err)
	}
	if _, err := AssignTo(ctx, db, conv.ID, "ghost"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown agent: %v", err)
	}

	// A conversation that is not PENDING cannot be assigned.
	fresh, _ := CreateConversation(ctx, db, "s-none", "ch-1")
	if _, err := AssignTo(ctx, db, fresh.ID, full.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("NONE conversation: %v", err)
	}
}

func TestPendingQueueAndAssignedList(t *testing.T) {
	db := newTestDB(t, "repo-conv-lists")
	ctx := context.Background()
	agent := mustAgent(t, db, "ada", domain.AgentOnline, 10, 1)

	a := mustPending(t, db, "s-1")
	b := mustPending(t, db, "s-2")

	queue, err := ListPendingConversations(ctx, db)
	if err != nil || len(queue) != 2 {
		t.Fatalf("queue = %d, %v", len(queue), err)
	}

	if _, err := AssignTo(ctx, db, a.ID, agent.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := AssignTo(ctx, db, b.ID, agent.ID); err != nil {
		t.Fatal(err)
	}

	queue, _ = ListPendingConversations(ctx, db)
	if len(queue) != 0 {
		t.Fatalf("queue after assign = %d", len(queue))
	}
	mine, err := ListAssignedConversations(ctx, db, agent.ID)
	if err != nil || len(mine) != 2 {
		t.Fatalf("assigned = %d, %v", len(mine), err)
	}
}

func TestGetConversationBySession_Newest(t *testing.T) {
	db := newTestDB(t, "repo-conv-bysession")
	ctx := context.Background()

	if _, err := GetConversationBySession(ctx, db, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := CreateConversation(ctx, db, "s1", "ch-1"); err != nil {
		t.Fatal(err)
	}
	got, err := GetConversationBySession(ctx, db, "s1")
	if err != nil || got.SessionID != "s1" {
		t.Fatalf("by session: %+v, %v", got, err)
	}
}

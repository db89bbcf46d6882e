package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/honeychat/honey-backend/internal/domain"
	"github.com/honeychat/honey-backend/internal/repo"
)

// fakeTranscriptRepo is an in-memory TranscriptRepo. receiptErr forces the
// receipt insert to fail so the lost-race path can be exercised;
// failAppendAt makes the nth append of a batch fail. Transact snapshots
// the store and restores it on error, matching the rollback the real
// repository gets from sqlite.
type fakeTranscriptRepo struct {
	rows     []domain.Response
	receipts map[string]*domain.IngestReceipt

	receiptErr   error
	failAppendAt int
	appendCalls  int
	pageCalls    int
}

func (f *fakeTranscriptRepo) Transact(_ context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	rows := append([]domain.Response(nil), f.rows...)
	receipts := make(map[string]*domain.IngestReceipt, len(f.receipts))
	for k, v := range f.receipts {
		receipts[k] = v
	}
	if err := fn(db); err != nil {
		f.rows, f.receipts = rows, receipts
		return err
	}
	return nil
}

func newFakeTranscriptRepo() *fakeTranscriptRepo {
	return &fakeTranscriptRepo{receipts: make(map[string]*domain.IngestReceipt)}
}

func (f *fakeTranscriptRepo) AppendResponse(_ context.Context, _ *gorm.DB, row *domain.Response) (*domain.Response, error) {
	f.appendCalls++
	if f.failAppendAt > 0 && f.appendCalls == f.failAppendAt {
		return nil, errors.New("append failed")
	}
	f.rows = append(f.rows, *row)
	return row, nil
}

func (f *fakeTranscriptRepo) ListResponses(_ context.Context, _ *gorm.DB, sessionID string) ([]domain.Response, error) {
	var out []domain.Response
	for _, r := range f.rows {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeTranscriptRepo) LatestResponse(_ context.Context, _ *gorm.DB, sessionID string) (*domain.Response, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].SessionID == sessionID {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeTranscriptRepo) CountResponses(_ context.Context, _ *gorm.DB, _ repo.ResponseFilter) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeTranscriptRepo) ListResponsesPage(_ context.Context, _ *gorm.DB, _ repo.ResponseFilter, offset, limit int) ([]domain.Response, error) {
	f.pageCalls++
	if offset >= len(f.rows) {
		return []domain.Response{}, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[offset:end], nil
}

func (f *fakeTranscriptRepo) GetIngestReceipt(_ context.Context, _ *gorm.DB, sessionID, batchKey string, _ time.Time) (*domain.IngestReceipt, error) {
	r, ok := f.receipts[sessionID+"/"+batchKey]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r, nil
}

func (f *fakeTranscriptRepo) CreateIngestReceipt(_ context.Context, _ *gorm.DB, sessionID, batchKey string, turnCount int, _ time.Duration) (*domain.IngestReceipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	key := sessionID + "/" + batchKey
	if _, ok := f.receipts[key]; ok {
		return nil, repo.ErrDuplicate
	}
	r := &domain.IngestReceipt{SessionID: sessionID, BatchKey: batchKey, TurnCount: turnCount}
	f.receipts[key] = r
	return r, nil
}

func turns(n int) []IngestTurn {
	out := make([]IngestTurn, n)
	for i := range out {
		out[i] = IngestTurn{StepKey: "language", Question: "q", RawInput: "English", NormalizedValue: "English", Widget: "single_select"}
	}
	return out
}

func TestIngest_Rejections(t *testing.T) {
	svc := NewTranscriptService(nil, newFakeTranscriptRepo())
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "   ", "b1", turns(1)); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("blank session: %v", err)
	}
	if _, err := svc.Ingest(ctx, "s1", "b1", nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("empty batch: %v", err)
	}
	svc.MaxBatchTurns = 2
	if _, err := svc.Ingest(ctx, "s1", "b1", turns(3)); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("oversized batch: %v", err)
	}
}

func TestIngest_AppendsAndRemembers(t *testing.T) {
	f := newFakeTranscriptRepo()
	svc := NewTranscriptService(nil, f)
	ctx := context.Background()

	out, err := svc.Ingest(ctx, "s1", "batch-1", turns(3))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if out.Replay || out.Appended != 3 {
		t.Fatalf("outcome = %+v", out)
	}
	if len(f.rows) != 3 || f.rows[0].SessionID != "s1" || f.rows[0].StepKey != "language" {
		t.Fatalf("rows = %+v", f.rows)
	}

	// Same batch key again appends nothing.
	out, err = svc.Ingest(ctx, "s1", "batch-1", turns(3))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !out.Replay || out.Appended != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if len(f.rows) != 3 {
		t.Fatalf("replay appended rows: %d", len(f.rows))
	}

	// A different key, and the same key for another session, both apply.
	if out, _ := svc.Ingest(ctx, "s1", "batch-2", turns(1)); out.Replay {
		t.Fatal("fresh key treated as replay")
	}
	if out, _ := svc.Ingest(ctx, "s2", "batch-1", turns(1)); out.Replay {
		t.Fatal("other session treated as replay")
	}
}

func TestIngest_NoKeySkipsReceipts(t *testing.T) {
	f := newFakeTranscriptRepo()
	svc := NewTranscriptService(nil, f)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := svc.Ingest(ctx, "s1", "  ", turns(1))
		if err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
		if out.Replay || out.Appended != 1 {
			t.Fatalf("outcome = %+v", out)
		}
	}
	if len(f.rows) != 2 {
		t.Fatalf("rows = %d", len(f.rows))
	}
	if len(f.receipts) != 0 {
		t.Fatalf("receipts written without a key: %d", len(f.receipts))
	}
}

func TestIngest_LostInsertRaceIsReplay(t *testing.T) {
	f := newFakeTranscriptRepo()
	f.receiptErr = repo.ErrDuplicate
	svc := NewTranscriptService(nil, f)

	out, err := svc.Ingest(context.Background(), "s1", "batch-1", turns(2))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !out.Replay || out.Appended != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if len(f.rows) != 0 {
		t.Fatal("lost race still appended")
	}
}

func TestIngest_MidBatchFailureRetries(t *testing.T) {
	f := newFakeTranscriptRepo()
	f.failAppendAt = 2
	svc := NewTranscriptService(nil, f)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, "s1", "batch-1", turns(2)); err == nil {
		t.Fatal("mid-batch failure must surface")
	}
	if len(f.rows) != 0 || len(f.receipts) != 0 {
		t.Fatalf("failed batch left rows=%d receipts=%d", len(f.rows), len(f.receipts))
	}

	// The retry with the same key is a fresh apply, not a replay.
	out, err := svc.Ingest(ctx, "s1", "batch-1", turns(2))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if out.Replay || out.Appended != 2 {
		t.Fatalf("retry outcome = %+v", out)
	}
	if len(f.rows) != 2 {
		t.Fatalf("rows after retry = %d", len(f.rows))
	}
}

func TestIngest_StoresOfferedOptions(t *testing.T) {
	f := newFakeTranscriptRepo()
	svc := NewTranscriptService(nil, f)

	batch := []IngestTurn{{
		StepKey:         "language",
		Question:        "q",
		RawInput:        "English",
		NormalizedValue: "English",
		Widget:          "single_select",
		Options:         []string{"English", "Hausa", "Yoruba"},
	}}
	if _, err := svc.Ingest(context.Background(), "s1", "", batch); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(f.rows) != 1 {
		t.Fatalf("rows = %d", len(f.rows))
	}
	if got := string(f.rows[0].AvailableOptions); got != `["English","Hausa","Yoruba"]` {
		t.Fatalf("options = %s", got)
	}
}

func TestLatest_MapsEmptyLog(t *testing.T) {
	f := newFakeTranscriptRepo()
	svc := NewTranscriptService(nil, f)
	ctx := context.Background()

	if _, err := svc.Latest(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}

	f.rows = append(f.rows,
		domain.Response{SessionID: "s1", StepKey: "welcome"},
		domain.Response{SessionID: "s2", StepKey: "other"},
		domain.Response{SessionID: "s1", StepKey: "concern"},
	)
	row, err := svc.Latest(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if row.StepKey != "concern" {
		t.Fatalf("step = %q, want concern", row.StepKey)
	}
}

func TestListPage_DefaultsAndShortCircuit(t *testing.T) {
	f := newFakeTranscriptRepo()
	svc := NewTranscriptService(nil, f)
	ctx := context.Background()

	// No rows: the page query is skipped entirely.
	items, total, err := svc.ListPage(ctx, repo.ResponseFilter{}, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(items) != 0 || f.pageCalls != 0 {
		t.Fatalf("total=%d items=%d pageCalls=%d", total, len(items), f.pageCalls)
	}

	for i := 0; i < 5; i++ {
		f.rows = append(f.rows, domain.Response{SessionID: "s1"})
	}
	items, total, err = svc.ListPage(ctx, repo.ResponseFilter{}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
}

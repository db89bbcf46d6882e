// Package services – TranscriptService
//
// This file implements the TranscriptService: reads over the append-only
// response log, and the batch ingest endpoint the client widget pushes
// transcripts through. Batches are deduplicated by (session, batch key)
// receipt, so the widget's retry-happy push loop never double-appends.
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
	"github.com/honeychat/honey-backend/internal/repo"
)

// TranscriptRepo defines the repository contract required by
// TranscriptService.
type TranscriptRepo interface {
	AppendResponse(ctx context.Context, db *gorm.DB, row *domain.Response) (*domain.Response, error)
	ListResponses(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Response, error)
	LatestResponse(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Response, error)
	CountResponses(ctx context.Context, db *gorm.DB, f repo.ResponseFilter) (int64, error)
	ListResponsesPage(ctx context.Context, db *gorm.DB, f repo.ResponseFilter, offset, limit int) ([]domain.Response, error)
	GetIngestReceipt(ctx context.Context, db *gorm.DB, sessionID, batchKey string, now time.Time) (*domain.IngestReceipt, error)
	CreateIngestReceipt(ctx context.Context, db *gorm.DB, sessionID, batchKey string, turnCount int, ttl time.Duration) (*domain.IngestReceipt, error)
	Transact(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error
}

// IngestTurn is one transcript row pushed by the widget.
type IngestTurn struct {
	StepKey         string   `json:"step_key"`
	Question        string   `json:"question"`
	RawInput        string   `json:"raw_input"`
	NormalizedValue string   `json:"normalized_value"`
	Widget          string   `json:"widget"`
	Options         []string `json:"options,omitempty"`
	Category        string   `json:"category,omitempty"`
}

// IngestOutcome reports what a batch push did.
type IngestOutcome struct {
	// Appended is how many turns were written by this call.
	Appended int `json:"appended"`
	// Replay is set when the batch key had already been applied and the
	// call appended nothing.
	Replay bool `json:"replay"`
}

// TranscriptService owns the response log.
type TranscriptService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the transcript repository used by this service.
	Repo TranscriptRepo

	// ReceiptTTL bounds how long a batch key is remembered.
	ReceiptTTL time.Duration
	// MaxBatchTurns caps the turns accepted per push.
	MaxBatchTurns int
}

// NewTranscriptService constructs a TranscriptService with stock limits.
func NewTranscriptService(db *gorm.DB, r TranscriptRepo) *TranscriptService {
	return &TranscriptService{DB: db, Repo: r, ReceiptTTL: 24 * time.Hour, MaxBatchTurns: 200}
}

// ErrBatchTooLarge is returned when a push exceeds MaxBatchTurns.
var ErrBatchTooLarge = errors.New("batch too large")

// Ingest applies one pushed transcript batch. The receipt insert and the
// appends share one transaction: a mid-batch failure rolls the receipt
// back too, so the client's retry of the same batch key appends instead of
// being answered as a replay. Losing the receipt insert to a duplicate
// means another push already applied this batch.
func (s *TranscriptService) Ingest(ctx context.Context, sessionID, batchKey string, turns []IngestTurn) (*IngestOutcome, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	if len(turns) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.MaxBatchTurns > 0 && len(turns) > s.MaxBatchTurns {
		return nil, ErrBatchTooLarge
	}

	if batchKey = strings.TrimSpace(batchKey); batchKey != "" {
		if _, err := s.Repo.GetIngestReceipt(ctx, s.DB, sessionID, batchKey, time.Now().UTC()); err == nil {
			return &IngestOutcome{Replay: true}, nil
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	out := &IngestOutcome{}
	err := s.Repo.Transact(ctx, s.DB, func(tx *gorm.DB) error {
		if batchKey != "" {
			if _, err := s.Repo.CreateIngestReceipt(ctx, tx, sessionID, batchKey, len(turns), s.ReceiptTTL); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					out.Replay = true
					return nil
				}
				return err
			}
		}
		for _, t := range turns {
			var opts datatypes.JSON
			if len(t.Options) > 0 {
				b, err := json.Marshal(t.Options)
				if err != nil {
					return err
				}
				opts = datatypes.JSON(b)
			}
			row := &domain.Response{
				SessionID:        sessionID,
				StepKey:          t.StepKey,
				Question:         t.Question,
				RawInput:         t.RawInput,
				NormalizedValue:  t.NormalizedValue,
				Widget:           t.Widget,
				AvailableOptions: opts,
				Category:         t.Category,
			}
			if _, err := s.Repo.AppendResponse(ctx, tx, row); err != nil {
				return err
			}
		}
		out.Appended = len(turns)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns a session's full transcript in chronological order.
func (s *TranscriptService) List(ctx context.Context, sessionID string) ([]domain.Response, error) {
	return s.Repo.ListResponses(ctx, s.DB, sessionID)
}

// Latest returns the most recent logged turn for a session.
func (s *TranscriptService) Latest(ctx context.Context, sessionID string) (*domain.Response, error) {
	row, err := s.Repo.LatestResponse(ctx, s.DB, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return row, nil
}

// ListPage returns a filtered, paginated slice of the response log along
// with the total match count. Defaults are applied for invalid page and
// pageSize values.
func (s *TranscriptService) ListPage(ctx context.Context, f repo.ResponseFilter, page, pageSize int) ([]domain.Response, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	total, err := s.Repo.CountResponses(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Response{}, 0, nil
	}
	items, err := s.Repo.ListResponsesPage(ctx, s.DB, f, (page-1)*pageSize, pageSize)
	return items, total, err
}

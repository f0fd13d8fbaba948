package service

import (
	"context"
	"fmt"
	"time"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

// ProgressService manages per-session playback progress.
type ProgressService struct {
	store  *store.Store
	logger *logger.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(store *store.Store, logger *logger.Logger) *ProgressService {
	return &ProgressService{
		store:  store,
		logger: logger,
	}
}

// SaveProgressInput is one progress snapshot from a player.
type SaveProgressInput struct {
	SessionID string  `json:"sessionId" validate:"required"`
	ChapterID string  `json:"chapterId" validate:"required"`
	Position  float64 `json:"position" validate:"gte=0"`
	Completed bool    `json:"completed"`
}

// ProgressInfo is the wire form of a progress record, camelCase like
// the rest of the API.
type ProgressInfo struct {
	SessionID        string    `json:"sessionId"`
	BookID           string    `json:"bookId"`
	CurrentChapterID string    `json:"currentChapterId"`
	Position         float64   `json:"position"`
	Completed        bool      `json:"completed"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewProgressInfo converts a stored progress record to its wire form.
func NewProgressInfo(p *domain.PlaybackProgress) *ProgressInfo {
	return &ProgressInfo{
		SessionID:        p.SessionID,
		BookID:           p.BookID,
		CurrentChapterID: p.CurrentChapterID,
		Position:         p.Position,
		Completed:        p.Completed,
		UpdatedAt:        p.UpdatedAt,
	}
}

// GetProgress returns the progress record for a (session, book) pair.
// A session that has never played the book gets the zero-value record
// rather than an error, so clients need no never-played special case.
func (s *ProgressService) GetProgress(ctx context.Context, sessionID, bookID string) (*domain.PlaybackProgress, error) {
	if sessionID == "" {
		return nil, errors.Validation("sessionId is required")
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	progress, err := s.store.GetProgress(ctx, sessionID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return &domain.PlaybackProgress{
				SessionID: sessionID,
				BookID:    bookID,
			}, nil
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

// SaveProgress upserts the progress record for a (session, book) pair.
// The snapshot's chapter must belong to the book; last write wins.
func (s *ProgressService) SaveProgress(ctx context.Context, bookID string, input SaveProgressInput) (*domain.PlaybackProgress, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.ChapterByID(input.ChapterID) == nil {
		return nil, errors.Validationf("chapter %s does not belong to book", input.ChapterID)
	}

	progress := &domain.PlaybackProgress{
		SessionID:        input.SessionID,
		BookID:           bookID,
		CurrentChapterID: input.ChapterID,
		Position:         input.Position,
		Completed:        input.Completed,
		UpdatedAt:        time.Now(),
	}

	if err := s.store.UpsertProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("progress saved",
			"session_id", input.SessionID,
			"book_id", bookID,
			"chapter_id", input.ChapterID,
			"position", input.Position,
			"completed", input.Completed,
		)
	}
	return progress, nil
}

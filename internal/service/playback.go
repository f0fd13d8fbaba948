package service

import (
	"context"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

// PlaybackService issues the short-lived audio URLs players stream from.
type PlaybackService struct {
	store   *store.Store
	objects storage.ObjectStore
	logger  *logger.Logger
}

// NewPlaybackService creates a new playback service.
func NewPlaybackService(store *store.Store, objects storage.ObjectStore, logger *logger.Logger) *PlaybackService {
	return &PlaybackService{
		store:   store,
		objects: objects,
		logger:  logger,
	}
}

// ChapterInfo is the chapter summary returned alongside a play URL.
type ChapterInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Order    int     `json:"order"`
	Duration float64 `json:"duration"`
}

// PlayInfo is everything a player needs to start streaming a chapter.
// PlayURL expires quickly; players request a fresh one per chapter load
// instead of caching it.
type PlayInfo struct {
	PlayURL       string      `json:"playUrl"`
	MimeType      string      `json:"mimeType"`
	Chapter       ChapterInfo `json:"chapter"`
	TotalChapters int         `json:"totalChapters"`
}

// GetPlayInfo resolves a chapter of a book to a presigned streaming URL.
// An empty chapterID selects the book's lowest-order chapter. A chapter
// ID that does not belong to the book is NotFound, never a fallback to
// some other chapter.
func (s *PlaybackService) GetPlayInfo(ctx context.Context, bookID, chapterID string) (*PlayInfo, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var chapter *domain.Chapter
	if chapterID == "" {
		chapter = book.FirstChapter()
		if chapter == nil {
			return nil, errors.NotFound("book has no chapters")
		}
	} else {
		chapter = book.ChapterByID(chapterID)
		if chapter == nil {
			return nil, errors.NotFoundf("chapter %s not found in book", chapterID)
		}
	}

	playURL, err := s.objects.PresignRead(ctx, chapter.ObjectKey, storage.AudioReadTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "presign audio")
	}

	if s.logger != nil {
		s.logger.Debug("issued play url",
			"book_id", bookID,
			"chapter_id", chapter.ID,
			"order", chapter.Order,
		)
	}

	return &PlayInfo{
		PlayURL:  playURL,
		MimeType: chapter.MimeType,
		Chapter: ChapterInfo{
			ID:       chapter.ID,
			Title:    chapter.Title,
			Order:    chapter.Order,
			Duration: chapter.Duration,
		},
		TotalChapters: len(book.Chapters),
	}, nil
}

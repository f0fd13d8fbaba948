// Package service provides the business logic layer for the AudioShelf catalog and playback API.
package service

import (
	"context"
	"fmt"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/id"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

// BookService orchestrates catalog operations.
type BookService struct {
	store   *store.Store
	objects storage.ObjectStore
	logger  *logger.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *store.Store, objects storage.ObjectStore, logger *logger.Logger) *BookService {
	return &BookService{
		store:   store,
		objects: objects,
		logger:  logger,
	}
}

// ChapterInput describes one chapter in a create or update request.
// Order expresses relative position only; the stored order values are
// re-derived as a dense 1-based sequence.
type ChapterInput struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title" validate:"required,max=500"`
	Order     int     `json:"order"`
	ObjectKey string  `json:"objectKey" validate:"required"`
	MimeType  string  `json:"mimeType" validate:"required,startswith=audio/"`
	Duration  float64 `json:"duration" validate:"gte=0"`
}

// CreateBookInput describes a new book.
type CreateBookInput struct {
	Title       string         `json:"title" validate:"required,max=500"`
	Author      string         `json:"author" validate:"required,max=500"`
	Description string         `json:"description" validate:"max=5000"`
	Chapters    []ChapterInput `json:"chapters" validate:"dive"`
}

// UpdateBookInput fully replaces a book's metadata and chapter list.
type UpdateBookInput struct {
	Title       string         `json:"title" validate:"required,max=500"`
	Author      string         `json:"author" validate:"required,max=500"`
	Description string         `json:"description" validate:"max=5000"`
	Chapters    []ChapterInput `json:"chapters" validate:"dive"`
}

// ListBooks returns all books, newest first.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx)
}

// GetBook retrieves a single book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// CreateBook creates a book with server-generated IDs, normalized chapter
// ordering, and a recomputed total duration.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	book := &domain.Book{
		ID:          id.MustGenerate("book"),
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
		Chapters:    make([]domain.Chapter, 0, len(input.Chapters)),
	}

	for _, ch := range input.Chapters {
		book.Chapters = append(book.Chapters, domain.Chapter{
			ID:        id.MustGenerate("ch"),
			Title:     ch.Title,
			Order:     ch.Order,
			ObjectKey: ch.ObjectKey,
			MimeType:  ch.MimeType,
			Duration:  ch.Duration,
		})
	}

	book.NormalizeChapters()
	book.RecalculateTotalDuration()
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// UpdateBook replaces a book's metadata and chapter list. Chapters whose
// ID matches an existing chapter keep that ID, so playback progress
// pointing at them stays valid; chapters without a known ID get a new
// one. Audio objects belonging to removed chapters are deleted from
// object storage best-effort.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]domain.Chapter, len(book.Chapters))
	for _, ch := range book.Chapters {
		existing[ch.ID] = ch
	}

	chapters := make([]domain.Chapter, 0, len(input.Chapters))
	kept := make(map[string]bool, len(input.Chapters))
	for _, in := range input.Chapters {
		chapterID := in.ID
		if _, ok := existing[chapterID]; !ok {
			chapterID = id.MustGenerate("ch")
		}
		kept[chapterID] = true
		chapters = append(chapters, domain.Chapter{
			ID:        chapterID,
			Title:     in.Title,
			Order:     in.Order,
			ObjectKey: in.ObjectKey,
			MimeType:  in.MimeType,
			Duration:  in.Duration,
		})
	}

	// Orphaned audio objects from dropped chapters.
	var removedKeys []string
	for chID, ch := range existing {
		if !kept[chID] && ch.ObjectKey != "" {
			removedKeys = append(removedKeys, ch.ObjectKey)
		}
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Description = input.Description
	book.Chapters = chapters
	book.NormalizeChapters()
	book.RecalculateTotalDuration()
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.deleteObjects(ctx, removedKeys)

	return book, nil
}

// DeleteBook removes a book and its progress records, then deletes the
// book's audio and cover objects best-effort.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}

	var keys []string
	for _, ch := range book.Chapters {
		if ch.ObjectKey != "" {
			keys = append(keys, ch.ObjectKey)
		}
	}
	keys = append(keys, coverKeys(book.Cover)...)
	s.deleteObjects(ctx, keys)

	return nil
}

// UploadTarget is a presigned PUT URL plus the object key the client
// must reference when attaching the uploaded file to a book.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// NewUploadTarget issues a presigned upload URL. Audio uploads land
// under the audio prefix, images under the covers prefix.
func (s *BookService) NewUploadTarget(ctx context.Context, filename, contentType string) (*UploadTarget, error) {
	prefix := storage.AudioKeyPrefix
	if isImageContentType(contentType) {
		prefix = storage.CoverKeyPrefix
	}

	objectKey := storage.GenerateObjectKey(filename, prefix)
	uploadURL, err := s.objects.PresignUpload(ctx, objectKey, contentType, storage.UploadTTL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "presign upload")
	}

	return &UploadTarget{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// deleteObjects removes objects best-effort, logging failures instead of
// propagating them. Catalog writes never fail because of storage cleanup.
func (s *BookService) deleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.objects.Delete(ctx, key); err != nil && s.logger != nil {
			s.logger.Warn("failed to delete object", "key", key, "error", err)
		}
	}
}

func coverKeys(cover *domain.Cover) []string {
	if cover == nil {
		return nil
	}
	var keys []string
	for _, key := range []string{cover.ObjectKey, cover.ThumbnailKey, cover.MediumKey, cover.LargeKey} {
		if key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func isImageContentType(contentType string) bool {
	return len(contentType) > 6 && contentType[:6] == "image/"
}

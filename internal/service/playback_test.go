package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

func setupPlaybackService(t *testing.T) (*PlaybackService, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return NewPlaybackService(s, storage.NewFakeStore(), nil), s
}

func seedPlaybackBook(t *testing.T, s *store.Store) *domain.Book {
	t.Helper()

	book := &domain.Book{
		ID:     "book-1",
		Title:  "Consider Phlebas",
		Author: "Iain M. Banks",
		Chapters: []domain.Chapter{
			{ID: "ch-a", Title: "One", Order: 1, ObjectKey: "audio/a.mp3", MimeType: "audio/mpeg", Duration: 100},
			{ID: "ch-b", Title: "Two", Order: 2, ObjectKey: "audio/b.mp3", MimeType: "audio/mpeg", Duration: 200},
		},
	}
	book.RecalculateTotalDuration()
	book.InitTimestamps()
	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}

func TestGetPlayInfoSpecificChapter(t *testing.T) {
	svc, s := setupPlaybackService(t)
	ctx := context.Background()
	seedPlaybackBook(t, s)

	info, err := svc.GetPlayInfo(ctx, "book-1", "ch-b")
	require.NoError(t, err)

	assert.Contains(t, info.PlayURL, "audio/b.mp3")
	assert.Equal(t, "audio/mpeg", info.MimeType)
	assert.Equal(t, "ch-b", info.Chapter.ID)
	assert.Equal(t, 2, info.Chapter.Order)
	assert.Equal(t, float64(200), info.Chapter.Duration)
	assert.Equal(t, 2, info.TotalChapters)
}

func TestGetPlayInfoDefaultsToFirstChapter(t *testing.T) {
	svc, s := setupPlaybackService(t)
	ctx := context.Background()
	seedPlaybackBook(t, s)

	info, err := svc.GetPlayInfo(ctx, "book-1", "")
	require.NoError(t, err)
	assert.Equal(t, "ch-a", info.Chapter.ID)
	assert.Equal(t, 1, info.Chapter.Order)
}

func TestGetPlayInfoForeignChapter(t *testing.T) {
	svc, s := setupPlaybackService(t)
	ctx := context.Background()
	seedPlaybackBook(t, s)

	_, err := svc.GetPlayInfo(ctx, "book-1", "ch-from-another-book")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetPlayInfoEmptyBook(t *testing.T) {
	svc, s := setupPlaybackService(t)
	ctx := context.Background()

	empty := &domain.Book{ID: "book-empty", Title: "Empty", Author: "Nobody"}
	empty.InitTimestamps()
	require.NoError(t, s.CreateBook(ctx, empty))

	_, err := svc.GetPlayInfo(ctx, "book-empty", "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetPlayInfoUnknownBook(t *testing.T) {
	svc, _ := setupPlaybackService(t)

	_, err := svc.GetPlayInfo(context.Background(), "book-missing", "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

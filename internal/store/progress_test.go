package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

func TestUpsertProgress_CreateThenUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &domain.PlaybackProgress{
		SessionID:        "sess-1",
		BookID:           "book-1",
		CurrentChapterID: "ch-1",
		Position:         12.5,
	}
	require.NoError(t, s.UpsertProgress(ctx, first))

	got, err := s.GetProgress(ctx, "sess-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-1", got.CurrentChapterID)
	assert.InDelta(t, 12.5, got.Position, 0.001)
	assert.False(t, got.Completed)

	// A later save fully replaces the mutable fields.
	second := &domain.PlaybackProgress{
		SessionID:        "sess-1",
		BookID:           "book-1",
		CurrentChapterID: "ch-2",
		Position:         0,
		Completed:        false,
	}
	require.NoError(t, s.UpsertProgress(ctx, second))

	got, err = s.GetProgress(ctx, "sess-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-2", got.CurrentChapterID)
	assert.Zero(t, got.Position)
}

func TestUpsertProgress_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := &domain.PlaybackProgress{
		SessionID:        "sess-1",
		BookID:           "book-1",
		CurrentChapterID: "ch-3",
		Position:         99.9,
		Completed:        true,
	}
	require.NoError(t, s.UpsertProgress(ctx, p))
	require.NoError(t, s.UpsertProgress(ctx, p))

	got, err := s.GetProgress(ctx, "sess-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-3", got.CurrentChapterID)
	assert.InDelta(t, 99.9, got.Position, 0.001)
	assert.True(t, got.Completed)

	// Exactly one record for the key pair.
	count, err := s.CountProgressForBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetProgress_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetProgress(context.Background(), "sess-1", "book-1")
	assert.ErrorIs(t, err, store.ErrProgressNotFound)
}

func TestProgress_SessionIsolation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// Two devices for the "same human" have independent progress.
	require.NoError(t, s.UpsertProgress(ctx, &domain.PlaybackProgress{
		SessionID: "sess-phone", BookID: "book-1", CurrentChapterID: "ch-1", Position: 10,
	}))
	require.NoError(t, s.UpsertProgress(ctx, &domain.PlaybackProgress{
		SessionID: "sess-laptop", BookID: "book-1", CurrentChapterID: "ch-5", Position: 500,
	}))

	phone, err := s.GetProgress(ctx, "sess-phone", "book-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-1", phone.CurrentChapterID)

	laptop, err := s.GetProgress(ctx, "sess-laptop", "book-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-5", laptop.CurrentChapterID)
}

func TestDeleteProgress(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProgress(ctx, &domain.PlaybackProgress{
		SessionID: "sess-1", BookID: "book-1", CurrentChapterID: "ch-1", Position: 5,
	}))
	require.NoError(t, s.DeleteProgress(ctx, "sess-1", "book-1"))

	_, err := s.GetProgress(ctx, "sess-1", "book-1")
	assert.ErrorIs(t, err, store.ErrProgressNotFound)

	count, err := s.CountProgressForBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

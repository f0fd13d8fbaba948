package client

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioshelfapp/audioshelf-server/internal/api"
	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	domainerrors "github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/player"
	"github.com/audioshelfapp/audioshelf-server/internal/search"
	"github.com/audioshelfapp/audioshelf-server/internal/service"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

// setupLiveServer starts a real HTTP server backed by temp-dir storage
// and returns its base URL plus the book service for seeding.
func setupLiveServer(t *testing.T) (string, *service.BookService) {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(filepath.Join(tmpDir, "db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewIndex(search.Options{DataPath: filepath.Join(tmpDir, "search")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	s.SetSearchIndexer(index)

	objects := storage.NewFakeStore()
	books := service.NewBookService(s, objects, nil)

	adminService, err := service.NewAdminService("test-admin-password", time.Hour, nil)
	require.NoError(t, err)

	server := api.NewServer(api.Config{
		Store:    s,
		Books:    books,
		Playback: service.NewPlaybackService(s, objects, nil),
		Progress: service.NewProgressService(s, nil),
		Admin:    adminService,
		Search:   service.NewSearchService(index, s, nil),
		Logger:   logger,
	})
	t.Cleanup(server.Close)

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)

	return srv.URL, books
}

func seedBook(t *testing.T, books *service.BookService) *domain.Book {
	t.Helper()

	book, err := books.CreateBook(context.Background(), service.CreateBookInput{
		Title:  "The Left Hand of Darkness",
		Author: "Ursula K. Le Guin",
		Chapters: []service.ChapterInput{
			{Title: "Chapter 1", Order: 1, ObjectKey: "audio/1-a-ch1.mp3", MimeType: "audio/mpeg", Duration: 100},
			{Title: "Chapter 2", Order: 2, ObjectKey: "audio/1-a-ch2.mp3", MimeType: "audio/mpeg", Duration: 200},
		},
	})
	require.NoError(t, err)
	return book
}

func TestNewGeneratesSessionID(t *testing.T) {
	c := New(Options{BaseURL: "http://localhost"})

	require.NotEmpty(t, c.SessionID())
	_, err := uuid.Parse(c.SessionID())
	assert.NoError(t, err)

	c2 := New(Options{BaseURL: "http://localhost", SessionID: "session-fixed"})
	assert.Equal(t, "session-fixed", c2.SessionID())
}

func TestListBooks(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	c := New(Options{BaseURL: baseURL})

	list, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, seeded.ID, list[0].ID)
}

func TestGetBookRoundTrip(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	c := New(Options{BaseURL: baseURL})

	book, err := c.GetBook(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Left Hand of Darkness", book.Title)
	require.Len(t, book.Chapters, 2)
	assert.Equal(t, 1, book.Chapters[0].Order)
	assert.Equal(t, 300.0, book.TotalDuration)
}

func TestGetBookNotFound(t *testing.T) {
	baseURL, _ := setupLiveServer(t)
	c := New(Options{BaseURL: baseURL})

	_, err := c.GetBook(context.Background(), "book-missing")
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestGetPlayInfoDefaultsToFirstChapter(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	c := New(Options{BaseURL: baseURL})

	info, err := c.GetPlayInfo(context.Background(), seeded.ID, "")
	require.NoError(t, err)
	assert.Equal(t, seeded.Chapters[0].ID, info.ChapterID)
	assert.Equal(t, "audio/mpeg", info.MimeType)
	assert.Contains(t, info.PlayURL, "fake-storage.test/read/")
}

func TestGetPlayInfoSpecificChapter(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	c := New(Options{BaseURL: baseURL})

	info, err := c.GetPlayInfo(context.Background(), seeded.ID, seeded.Chapters[1].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Chapters[1].ID, info.ChapterID)
	assert.True(t, strings.Contains(info.PlayURL, "1-a-ch2"))
}

func TestProgressRoundTrip(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	c := New(Options{BaseURL: baseURL})
	ctx := context.Background()

	// Never played yet: zero record, not an error.
	progress, err := c.GetProgress(ctx, c.SessionID(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsZero())

	err = c.SaveProgress(ctx, c.SessionID(), seeded.ID, player.ProgressSnapshot{
		ChapterID: seeded.Chapters[1].ID,
		Position:  42.5,
	})
	require.NoError(t, err)

	progress, err = c.GetProgress(ctx, c.SessionID(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Chapters[1].ID, progress.CurrentChapterID)
	assert.Equal(t, 42.5, progress.Position)
	assert.False(t, progress.Completed)
}

func TestGetProgressRequiresSession(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	c := New(Options{BaseURL: baseURL})

	_, err := c.GetProgress(context.Background(), "", seeded.ID)
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

// stubEngine is the minimal engine needed to drive a player in tests.
type stubEngine struct {
	url      string
	position float64
	playing  bool
}

func (e *stubEngine) Load(url, _ string, position float64, autoplay bool) error {
	e.url = url
	e.position = position
	e.playing = autoplay
	return nil
}
func (e *stubEngine) Play() error            { e.playing = true; return nil }
func (e *stubEngine) Pause() error           { e.playing = false; return nil }
func (e *stubEngine) Seek(pos float64) error { e.position = pos; return nil }
func (e *stubEngine) Position() float64      { return e.position }
func (e *stubEngine) Unload()                { e.url = ""; e.playing = false }

// TestPlayerOverHTTP drives the playback state machine through a real
// server: play, pause mid-chapter, then resume in a new player sharing
// the session.
func TestPlayerOverHTTP(t *testing.T) {
	baseURL, books := setupLiveServer(t)
	seeded := seedBook(t, books)
	ctx := context.Background()

	sessionID := NewSessionID()
	c := New(Options{BaseURL: baseURL, SessionID: sessionID})
	engine := &stubEngine{}
	p := player.New(c, engine, sessionID, nil)

	require.NoError(t, p.PlayBook(ctx, seeded.ID))
	assert.Equal(t, player.StatePlaying, p.Status().State)
	assert.Equal(t, seeded.Chapters[0].ID, p.Status().ChapterID)

	// Pause at 37s; the position is saved server-side.
	engine.position = 37
	require.NoError(t, p.TogglePlayPause(ctx))
	p.Close(ctx)

	// A fresh player in the same session resumes where we left off.
	engine2 := &stubEngine{}
	p2 := player.New(New(Options{BaseURL: baseURL, SessionID: sessionID}), engine2, sessionID, nil)
	require.NoError(t, p2.PlayBook(ctx, seeded.ID))

	status := p2.Status()
	assert.Equal(t, seeded.Chapters[0].ID, status.ChapterID)
	assert.Equal(t, 37.0, engine2.position)
}

package player

import (
	"context"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
)

// PlayInfo is the per-chapter streaming grant the server issues. The URL
// is short-lived; the player requests a fresh one every chapter load.
type PlayInfo struct {
	PlayURL   string
	MimeType  string
	ChapterID string
}

// ProgressSnapshot is one consistent (chapter, position) pair sent to the
// server. Chapter and position are always captured together so a
// snapshot never mixes one chapter's ID with another's position.
type ProgressSnapshot struct {
	ChapterID string
	Position  float64
	Completed bool
}

// Client is the server API surface the player depends on.
type Client interface {
	// GetBook fetches a book with its full chapter list.
	GetBook(ctx context.Context, bookID string) (*domain.Book, error)

	// GetPlayInfo requests a streaming URL for a chapter of a book. An
	// empty chapterID selects the book's first chapter.
	GetPlayInfo(ctx context.Context, bookID, chapterID string) (*PlayInfo, error)

	// GetProgress fetches the session's resume point in a book. Sessions
	// that never played the book get the zero record, not an error.
	GetProgress(ctx context.Context, sessionID, bookID string) (*domain.PlaybackProgress, error)

	// SaveProgress upserts the session's resume point. Last write wins.
	SaveProgress(ctx context.Context, sessionID, bookID string, snap ProgressSnapshot) error
}

package domain

import "time"

// PlaybackProgress is the resume point for one anonymous session within
// one book. At most one record exists per (session, book) pair; saves
// are last-write-wins with no conflict detection.
type PlaybackProgress struct {
	SessionID        string    `json:"session_id"`
	BookID           string    `json:"book_id"`
	CurrentChapterID string    `json:"current_chapter_id,omitempty"`
	Position         float64   `json:"position"`
	Completed        bool      `json:"completed"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProgressID generates the composite key: "sessionID:bookID".
func ProgressID(sessionID, bookID string) string {
	return sessionID + ":" + bookID
}

// IsZero reports whether this is the zero-value "no progress yet" record.
func (p *PlaybackProgress) IsZero() bool {
	return p.CurrentChapterID == "" && p.Position == 0 && !p.Completed
}

// ResolveResume decides where playback of book should start for the
// given saved progress. The saved chapter is honored only when the
// record exists, is not completed, and names a chapter that still
// exists in the book's current chapter list; anything else falls back
// to the lowest-order chapter at position 0.
//
// Returns nil when the book has no chapters.
func ResolveResume(book *Book, progress *PlaybackProgress) (*Chapter, float64) {
	if book == nil || len(book.Chapters) == 0 {
		return nil, 0
	}

	if progress != nil && !progress.Completed && progress.CurrentChapterID != "" {
		if ch := book.ChapterByID(progress.CurrentChapterID); ch != nil {
			return ch, progress.Position
		}
	}

	return book.FirstChapter(), 0
}

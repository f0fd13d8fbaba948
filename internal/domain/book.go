// Package domain contains the core business entities and domain logic for the AudioShelf library.
package domain

import (
	"slices"
	"time"
)

// Book represents an audiobook in the library.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description,omitempty"`
	Cover         *Cover    `json:"cover,omitempty"`
	TotalDuration float64   `json:"total_duration"`
	Chapters      []Chapter `json:"chapters"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Cover holds the object keys for a book's cover art and its variants.
type Cover struct {
	ObjectKey    string `json:"object_key"`
	ThumbnailKey string `json:"thumbnail_key,omitempty"`
	MediumKey    string `json:"medium_key,omitempty"`
	LargeKey     string `json:"large_key,omitempty"`
	BlurHash     string `json:"blur_hash,omitempty"`
}

// Chapter represents one audio track within a book.
// Order is 1-based, dense, and unique within the book; it is the sole
// adjacency key for playback sequencing.
type Chapter struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Order     int     `json:"order"`
	ObjectKey string  `json:"object_key"`
	MimeType  string  `json:"mime_type"`
	Duration  float64 `json:"duration"`
}

// ChapterByID finds a chapter by its ID. Returns nil if not found.
func (b *Book) ChapterByID(id string) *Chapter {
	for i := range b.Chapters {
		if b.Chapters[i].ID == id {
			return &b.Chapters[i]
		}
	}
	return nil
}

// ChapterWithOrder finds the chapter with the exact order value.
// Returns nil if no chapter has that order.
func (b *Book) ChapterWithOrder(order int) *Chapter {
	for i := range b.Chapters {
		if b.Chapters[i].Order == order {
			return &b.Chapters[i]
		}
	}
	return nil
}

// FirstChapter returns the chapter with the lowest order value, or nil
// for a book with no chapters. It does not rely on slice position.
func (b *Book) FirstChapter() *Chapter {
	var first *Chapter
	for i := range b.Chapters {
		if first == nil || b.Chapters[i].Order < first.Order {
			first = &b.Chapters[i]
		}
	}
	return first
}

// NextChapter returns the chapter whose order is exactly one greater
// than ch's, or nil if ch is the last chapter.
func (b *Book) NextChapter(ch *Chapter) *Chapter {
	if ch == nil {
		return nil
	}
	return b.ChapterWithOrder(ch.Order + 1)
}

// PrevChapter returns the chapter whose order is exactly one less
// than ch's, or nil if ch is the first chapter.
func (b *Book) PrevChapter(ch *Chapter) *Chapter {
	if ch == nil {
		return nil
	}
	return b.ChapterWithOrder(ch.Order - 1)
}

// NormalizeChapters re-derives dense 1-based order values from list
// position and sorts the list by the result. Client-supplied order gaps
// are never trusted; the incoming list's relative ordering is preserved.
func (b *Book) NormalizeChapters() {
	slices.SortStableFunc(b.Chapters, func(a, c Chapter) int {
		return a.Order - c.Order
	})
	for i := range b.Chapters {
		b.Chapters[i].Order = i + 1
	}
}

// RecalculateTotalDuration recomputes the book's total duration as the
// sum of its current chapter durations. Called at every write; the
// stored total is never edited independently.
func (b *Book) RecalculateTotalDuration() {
	b.TotalDuration = 0
	for _, ch := range b.Chapters {
		b.TotalDuration += ch.Duration
	}
}

// Touch updates the UpdatedAt timestamp to the current time.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (b *Book) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}

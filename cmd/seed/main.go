// Package main provides a tool to seed the database with sample books
// and listening progress for local development.
//
// Usage:
//
//	DATA_PATH=~/AudioShelf/data go run ./cmd/seed
//	DATA_PATH=~/AudioShelf/data go run ./cmd/seed --with-progress
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/id"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

var withProgress = flag.Bool("with-progress", false, "Create sample progress records")

type seedBook struct {
	title    string
	author   string
	desc     string
	chapters int
}

var catalog = []seedBook{
	{"The Dispossessed", "Ursula K. Le Guin", "An ambiguous utopia.", 13},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "A mission to Gethen.", 20},
	{"Consider Phlebas", "Iain M. Banks", "A Culture novel.", 14},
	{"Use of Weapons", "Iain M. Banks", "Cheradenine Zakalwe's story.", 16},
	{"Roadside Picnic", "Arkady Strugatsky", "Stalkers in the Zone.", 9},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/AudioShelf/data")
	}

	s, err := store.New(filepath.Join(dataPath, "store"), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var books []*domain.Book
	for _, entry := range catalog {
		book := buildBook(entry, rng)
		if err := s.CreateBook(ctx, book); err != nil {
			log.Printf("Skipping %q: %v", entry.title, err)
			continue
		}
		fmt.Printf("Created %q (%d chapters, %.0fs)\n", book.Title, len(book.Chapters), book.TotalDuration)
		books = append(books, book)
	}

	if *withProgress {
		seedProgress(ctx, s, books, rng)
	}

	fmt.Printf("Done: %d books\n", len(books))
}

func buildBook(entry seedBook, rng *rand.Rand) *domain.Book {
	bookID := id.MustGenerate("book")
	book := &domain.Book{
		ID:          bookID,
		Title:       entry.title,
		Author:      entry.author,
		Description: entry.desc,
	}

	for i := 1; i <= entry.chapters; i++ {
		book.Chapters = append(book.Chapters, domain.Chapter{
			ID:        id.MustGenerate("ch"),
			Title:     fmt.Sprintf("Chapter %d", i),
			Order:     i,
			ObjectKey: fmt.Sprintf("audio/%s/ch%02d.mp3", bookID, i),
			MimeType:  "audio/mpeg",
			// 10 to 40 minutes per chapter.
			Duration: float64(600 + rng.Intn(1800)),
		})
	}

	book.NormalizeChapters()
	book.RecalculateTotalDuration()
	book.InitTimestamps()
	return book
}

// seedProgress creates a few anonymous sessions partway through random
// books, plus one finished book per session.
func seedProgress(ctx context.Context, s *store.Store, books []*domain.Book, rng *rand.Rand) {
	if len(books) == 0 {
		return
	}

	for i := 0; i < 3; i++ {
		sessionID := uuid.NewString()

		book := books[rng.Intn(len(books))]
		chapter := book.Chapters[rng.Intn(len(book.Chapters))]
		err := s.UpsertProgress(ctx, &domain.PlaybackProgress{
			SessionID:        sessionID,
			BookID:           book.ID,
			CurrentChapterID: chapter.ID,
			Position:         float64(rng.Intn(int(chapter.Duration))),
			UpdatedAt:        time.Now(),
		})
		if err != nil {
			log.Printf("Failed to seed progress: %v", err)
			continue
		}

		finished := books[rng.Intn(len(books))]
		last := finished.Chapters[len(finished.Chapters)-1]
		err = s.UpsertProgress(ctx, &domain.PlaybackProgress{
			SessionID:        sessionID,
			BookID:           finished.ID,
			CurrentChapterID: last.ID,
			Position:         last.Duration,
			Completed:        true,
			UpdatedAt:        time.Now(),
		})
		if err != nil {
			log.Printf("Failed to seed completed progress: %v", err)
			continue
		}

		fmt.Printf("Session %s: reading %q, finished %q\n", sessionID[:8], book.Title, finished.Title)
	}
}

// Package main provides a read-only inspection tool for the AudioShelf
// database.
//
// Usage:
//
//	DATA_PATH=~/AudioShelf/data go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/AudioShelf/data")
	}
	dbPath := filepath.Join(dataPath, "store")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	bookCount := 0
	totalChapters := 0
	coverCount := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				totalChapters += len(book.Chapters)
				if book.Cover != nil {
					coverCount++
				}

				if bookCount <= 5 {
					fmt.Printf("Book: %s — %s\n", book.Title, book.Author)
					fmt.Printf("  ID: %s\n", book.ID)
					fmt.Printf("  Duration: %.0fs over %d chapters\n", book.TotalDuration, len(book.Chapters))
					for i, ch := range book.Chapters {
						if i >= 5 {
							fmt.Printf("    ... and %d more chapters\n", len(book.Chapters)-5)
							break
						}
						fmt.Printf("    [%d] %s (%.1fs, %s)\n", ch.Order, ch.Title, ch.Duration, ch.MimeType)
					}
					fmt.Println()
				}
				return nil
			})
			if err != nil {
				log.Printf("Error reading book %s: %v", item.Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating books: %v", err)
	}

	progressCount := 0
	completedCount := 0
	sessions := map[string]struct{}{}

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("progress:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			err := it.Item().Value(func(val []byte) error {
				var progress domain.PlaybackProgress
				if err := json.Unmarshal(val, &progress); err != nil {
					return err
				}
				progressCount++
				if progress.Completed {
					completedCount++
				}
				sessions[progress.SessionID] = struct{}{}
				return nil
			})
			if err != nil {
				log.Printf("Error reading progress %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating progress: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", bookCount)
	fmt.Printf("Books with covers: %d\n", coverCount)
	fmt.Printf("Total chapters: %d\n", totalChapters)
	if bookCount > 0 {
		fmt.Printf("Average chapters per book: %.1f\n", float64(totalChapters)/float64(bookCount))
	}
	fmt.Printf("Progress records: %d (%d completed) across %d sessions\n",
		progressCount, completedCount, len(sessions))
}

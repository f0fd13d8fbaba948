package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
)

const (
	progressPrefix       = "progress:"
	progressByBookPrefix = "idx:progress:book:"
)

// progressKey builds the primary key for a (session, book) pair.
func progressKey(sessionID, bookID string) []byte {
	return []byte(progressPrefix + domain.ProgressID(sessionID, bookID))
}

// progressBookIndexKey builds the secondary index key used for cascade
// deletes when a book is removed.
func progressBookIndexKey(bookID, sessionID string) []byte {
	return []byte(progressByBookPrefix + bookID + ":" + sessionID)
}

// GetProgress retrieves the playback progress for a (session, book) pair.
// Returns ErrProgressNotFound if no record exists; callers that want the
// zero-value "not started" default handle that sentinel themselves.
func (s *Store) GetProgress(ctx context.Context, sessionID, bookID string) (*domain.PlaybackProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var progress domain.PlaybackProgress
	err := s.get(progressKey(sessionID, bookID), &progress)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &progress, nil
}

// UpsertProgress creates or fully replaces the progress record for its
// (session, book) pair. Last write wins; no conflict detection.
func (s *Store) UpsertProgress(ctx context.Context, progress *domain.PlaybackProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(progressKey(progress.SessionID, progress.BookID), data); err != nil {
			return err
		}
		// Index entry enables cascade delete by book without a full scan.
		return txn.Set(progressBookIndexKey(progress.BookID, progress.SessionID), []byte(progress.SessionID))
	})
}

// DeleteProgress removes the progress record for a (session, book) pair.
func (s *Store) DeleteProgress(ctx context.Context, sessionID, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(progressKey(sessionID, bookID)); err != nil {
			return err
		}
		return txn.Delete(progressBookIndexKey(bookID, sessionID))
	})
}

// CountProgressForBook returns how many sessions have progress in a book.
func (s *Store) CountProgressForBook(ctx context.Context, bookID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(progressByBookPrefix + bookID + ":")
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	return count, nil
}

// deleteProgressForBookTxn removes all progress records for a book
// inside an existing transaction. Used by DeleteBook for cascading.
func (s *Store) deleteProgressForBookTxn(txn *badger.Txn, bookID string) error {
	prefix := []byte(progressByBookPrefix + bookID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	// Collect keys first; deleting while iterating invalidates the iterator.
	var primaryKeys, indexKeys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		indexKeys = append(indexKeys, item.KeyCopy(nil))

		var sessionID string
		if err := item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		}); err != nil {
			return err
		}
		primaryKeys = append(primaryKeys, progressKey(sessionID, bookID))
	}

	for _, key := range append(primaryKeys, indexKeys...) {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

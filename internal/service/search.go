package service

import (
	"context"
	"fmt"

	"github.com/audioshelfapp/audioshelf-server/internal/logger"
	"github.com/audioshelfapp/audioshelf-server/internal/search"
	"github.com/audioshelfapp/audioshelf-server/internal/store"
)

// SearchService fronts the full-text catalog index.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *logger.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store *store.Store, logger *logger.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a catalog query.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// ReindexAll rebuilds the search index from the store. Called on startup
// after a mapping-version rebuild and available as an admin operation.
func (s *SearchService) ReindexAll(ctx context.Context) (int, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	if err := s.index.IndexBooks(books); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("reindexed catalog", "books", len(books))
	}
	return len(books), nil
}

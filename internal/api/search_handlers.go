package api

import (
	"net/http"
	"strconv"

	"github.com/audioshelfapp/audioshelf-server/internal/http/response"
	"github.com/audioshelfapp/audioshelf-server/internal/search"
)

// handleSearchBooks runs a full-text catalog search.
// GET /api/v1/books/search?q=...&limit=...&offset=...
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	params := search.DefaultParams()
	params.Query = r.URL.Query().Get("q")

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	result, err := s.searchService.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("Search failed", "query", params.Query, "error", err)
		response.InternalError(w, "Search failed", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

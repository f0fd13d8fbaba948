package api

import (
	"encoding/json/v2"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/audioshelfapp/audioshelf-server/internal/http/response"
	"github.com/audioshelfapp/audioshelf-server/internal/service"
)

// PlayURLRequest selects the chapter to stream. An empty or absent
// chapterId means the book's first chapter.
type PlayURLRequest struct {
	ChapterID string `json:"chapterId"`
}

// handleGetPlayURL issues a short-lived streaming URL for a chapter.
// POST /api/v1/books/{id}/play-url
//
// POST rather than GET: every call mints a fresh presigned URL, and
// players re-request instead of caching.
func (s *Server) handleGetPlayURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The body is optional; an empty body selects the first chapter.
	var req PlayURLRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil &&
		!errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	info, err := s.playbackService.GetPlayInfo(r.Context(), id, req.ChapterID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, info, s.logger)
}

// handleGetProgress returns a session's resume point in a book.
// GET /api/v1/books/{id}/progress?sessionId=...
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sessionID := r.URL.Query().Get("sessionId")

	progress, err := s.progressService.GetProgress(r.Context(), sessionID, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, service.NewProgressInfo(progress), s.logger)
}

// handleSaveProgress upserts a session's resume point in a book.
// POST /api/v1/books/{id}/progress
func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.SaveProgressInput
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	progress, err := s.progressService.SaveProgress(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, service.NewProgressInfo(progress), s.logger)
}

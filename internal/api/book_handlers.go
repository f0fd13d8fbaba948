package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/audioshelfapp/audioshelf-server/internal/http/response"
	"github.com/audioshelfapp/audioshelf-server/internal/service"
)

// handleListBooks returns the catalog, newest first.
// GET /api/v1/books
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bookService.ListBooks(r.Context())
	if err != nil {
		s.logger.Error("Failed to list books", "error", err)
		response.InternalError(w, "Failed to retrieve books", s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetBook returns a single book with its chapter list.
// GET /api/v1/books/{id}
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.bookService.GetBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleGetCoverURL returns a presigned URL for a book's cover rendition.
// GET /api/v1/books/{id}/cover?size=thumbnail|medium|large|original
func (s *Server) handleGetCoverURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	size := r.URL.Query().Get("size")

	url, err := s.bookService.CoverURL(r.Context(), id, size)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"coverUrl": url}, s.logger)
}

// handleCreateBook creates a book from uploaded chapter audio.
// POST /api/v1/admin/books
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookInput
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.CreateBook(r.Context(), req)
	if err != nil {
		s.logger.Error("Failed to create book", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleUpdateBook replaces a book's metadata and chapter list.
// PUT /api/v1/admin/books/{id}
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateBookInput
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.UpdateBook(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book, its progress records, and its objects.
// DELETE /api/v1/admin/books/{id}
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.bookService.DeleteBook(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// CreateUploadURLRequest asks for a presigned upload slot.
type CreateUploadURLRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required"`
}

// handleCreateUploadURL issues a presigned PUT URL for an audio or image upload.
// POST /api/v1/admin/upload-url
func (s *Server) handleCreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req CreateUploadURLRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	target, err := s.bookService.NewUploadTarget(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to presign upload", "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, target, s.logger)
}

// SetCoverRequest attaches an uploaded cover image to a book.
type SetCoverRequest struct {
	ObjectKey string `json:"objectKey" validate:"required"`
}

// handleSetCover processes an uploaded cover into variants and attaches it.
// POST /api/v1/admin/books/{id}/cover
func (s *Server) handleSetCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetCoverRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.bookService.SetCover(r.Context(), id, req.ObjectKey)
	if err != nil {
		s.logger.Error("Failed to set cover", "book_id", id, "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

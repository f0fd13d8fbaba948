package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/audioshelfapp/audioshelf-server/internal/http/response"
)

// adminCookieName is the admin session cookie.
const adminCookieName = "audioshelf-admin-session"

// AdminLoginRequest carries the admin password.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// handleAdminLogin verifies the admin password and sets the session cookie.
// POST /api/v1/admin/auth
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	// RealIP middleware has already resolved the client address.
	if !s.loginLimiter.Allow(r.RemoteAddr) {
		response.TooManyRequests(w, "Too many login attempts, try again later", s.logger)
		return
	}

	var req AdminLoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	token, expiresAt, err := s.adminService.Login(req.Password)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.adminService.SessionDuration().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, map[string]any{
		"expiresAt": expiresAt,
	}, s.logger)
}

// handleAdminLogout revokes the session and clears the cookie.
// DELETE /api/v1/admin/auth
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(adminCookieName); err == nil {
		s.adminService.Logout(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	response.NoContent(w)
}

// handleReindex rebuilds the search index from the catalog.
// POST /api/v1/admin/search/reindex
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.searchService.ReindexAll(r.Context())
	if err != nil {
		s.logger.Error("Failed to reindex catalog", "error", err)
		response.InternalError(w, "Failed to reindex catalog", s.logger)
		return
	}

	response.Success(w, map[string]int{"indexed": count}, s.logger)
}

package api

import (
	"net/http"

	"github.com/audioshelfapp/audioshelf-server/internal/http/response"
)

// requireAdmin gates a route group behind a live admin session cookie.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(adminCookieName)
		if err != nil || !s.adminService.Validate(cookie.Value) {
			response.Unauthorized(w, "Admin authentication required", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

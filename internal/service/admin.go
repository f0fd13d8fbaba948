package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
)

// AdminService authenticates the single admin user and tracks their
// sessions. Sessions live in memory; a server restart signs everyone out.
type AdminService struct {
	passwordHash    []byte
	sessionDuration time.Duration
	logger          *logger.Logger

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

// NewAdminService creates an admin service, hashing the configured
// password once at startup.
func NewAdminService(password string, sessionDuration time.Duration, logger *logger.Logger) (*AdminService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &AdminService{
		passwordHash:    hash,
		sessionDuration: sessionDuration,
		logger:          logger,
		sessions:        make(map[string]time.Time),
	}, nil
}

// Login verifies the password and mints a session token.
func (s *AdminService) Login(password string) (token string, expiresAt time.Time, err error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, errors.Unauthorized("invalid password")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}
	token = hex.EncodeToString(raw)
	expiresAt = time.Now().Add(s.sessionDuration)

	s.mu.Lock()
	s.sessions[token] = expiresAt
	s.pruneLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("admin logged in", "expires_at", expiresAt)
	}
	return token, expiresAt, nil
}

// Validate reports whether a session token is live.
func (s *AdminService) Validate(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Logout revokes a session token. Unknown tokens are a no-op.
func (s *AdminService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// SessionDuration returns the configured session lifetime, used for
// cookie Max-Age.
func (s *AdminService) SessionDuration() time.Duration {
	return s.sessionDuration
}

// pruneLocked drops expired sessions. Caller holds the mutex.
func (s *AdminService) pruneLocked() {
	now := time.Now()
	for token, expiry := range s.sessions {
		if now.After(expiry) {
			delete(s.sessions, token)
		}
	}
}

package auth

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/clientdir/internal/models"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// Sessions maps opaque bearer tokens to logged-in users.
type Sessions struct {
	mu      sync.Mutex
	ttl     time.Duration
	byToken map[string]models.Session
	now     func() time.Time
}

// NewSessions creates a registry whose sessions live for ttl.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{
		ttl:     ttl,
		byToken: make(map[string]models.Session),
		now:     time.Now,
	}
}

// Issue starts a session for userID.
func (s *Sessions) Issue(userID int) models.Session {
	now := s.now().UTC()
	sess := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[sess.Token] = sess
	return sess
}

// Resolve returns the live session for token. Expired sessions are dropped.
func (s *Sessions) Resolve(token string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.byToken, token)
		return models.Session{}, ErrSessionExpired
	}
	return sess, nil
}

// Revoke ends the session for token.
func (s *Sessions) Revoke(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[token]; !ok {
		return ErrSessionNotFound
	}
	delete(s.byToken, token)
	return nil
}

// Prune drops every expired session and returns how many were removed.
func (s *Sessions) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for token, sess := range s.byToken {
		if sess.Expired(now) {
			delete(s.byToken, token)
			n++
		}
	}
	return n
}

// ExtractTokenFromHeader extracts the bearer token from the Authorization header.
func ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

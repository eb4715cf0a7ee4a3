package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Hour)
	s.now = func() time.Time { return now }

	sess := s.Issue(7)
	_, err := uuid.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)

	got, err := s.Resolve(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, 7, got.UserID)

	now = now.Add(time.Hour)
	_, err = s.Resolve(sess.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = s.Resolve(sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsRevokeAndPrune(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Minute)
	s.now = func() time.Time { return now }

	a := s.Issue(1)
	s.Issue(2)

	require.NoError(t, s.Revoke(a.Token))
	assert.ErrorIs(t, s.Revoke(a.Token), ErrSessionNotFound)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 0, s.Prune())
}

func TestExtractTokenFromHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, ExtractTokenFromHeader(r), tt.header)
	}
}

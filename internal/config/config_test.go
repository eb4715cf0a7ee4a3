package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.UsersAPIURL)
	assert.Equal(t, "https://viacep.com.br", cfg.CEPAPIURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.TLSEnabled())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("CLIENTDIR_ADDR", ":9999")
	t.Setenv("CLIENTDIR_HTTP_TIMEOUT", "3s")
	t.Setenv("CLIENTDIR_LOGIN_BURST", "9")
	t.Setenv("CLIENTDIR_TLS_CERT", "server.crt")
	t.Setenv("CLIENTDIR_TLS_KEY", "server.key")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 9, cfg.LoginBurst)
	assert.True(t, cfg.TLSEnabled())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "CLIENTDIR_SESSION_TTL", "forever"},
		{"zero timeout", "CLIENTDIR_HTTP_TIMEOUT", "0s"},
		{"half tls", "CLIENTDIR_TLS_CERT", "server.crt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/clientdir/internal/config"
)

func writeCert(t *testing.T, notAfter time.Time) config.Config {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := config.Config{
		TLSCertFile: filepath.Join(dir, "server.crt"),
		TLSKeyFile:  filepath.Join(dir, "server.key"),
	}
	require.NoError(t, os.WriteFile(cfg.TLSCertFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(cfg.TLSKeyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return cfg
}

func TestLoadTLSWarnsNearExpiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		notAfter time.Duration
		warned   bool
	}{
		{name: "expires soon", notAfter: 48 * time.Hour, warned: true},
		{name: "long lived", notAfter: 90 * 24 * time.Hour, warned: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, hook := logtest.NewNullLogger()
			tlsCfg, err := loadTLS(writeCert(t, time.Now().Add(tt.notAfter)), logger)
			require.NoError(t, err)
			assert.Len(t, tlsCfg.Certificates, 1)

			warned := false
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warned = true
				}
			}
			assert.Equal(t, tt.warned, warned)
		})
	}
}

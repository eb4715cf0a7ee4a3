package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoCertificate is returned when a PEM file holds no certificate block.
var ErrNoCertificate = errors.New("failed to parse certificate PEM")

// CertManager loads the server's TLS key pair and reports on its validity.
type CertManager struct {
	certFile string
	keyFile  string
	now      func() time.Time
}

// NewCertManager creates a CertManager for the given PEM files.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile, now: time.Now}
}

// LoadCertificate parses the leaf certificate from the cert file.
func (cm *CertManager) LoadCertificate() (*x509.Certificate, error) {
	data, err := os.ReadFile(cm.certFile)
	if err != nil {
		return nil, err
	}

	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoCertificate
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// ExpiresWithin reports whether cert stops being valid inside d.
func (cm *CertManager) ExpiresWithin(cert *x509.Certificate, d time.Duration) bool {
	return cert.NotAfter.Before(cm.now().Add(d))
}

// TLSConfig loads the key pair, refusing certificates that have expired.
func (cm *CertManager) TLSConfig() (*tls.Config, *x509.Certificate, error) {
	leaf, err := cm.LoadCertificate()
	if err != nil {
		return nil, nil, fmt.Errorf("load certificate %s: %w", cm.certFile, err)
	}
	if cm.IsExpired(leaf) {
		return nil, nil, fmt.Errorf("certificate %s expired at %s", cm.certFile, leaf.NotAfter.Format(time.RFC3339))
	}
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load key pair: %w", err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{pair},
	}, leaf, nil
}

package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"resumescore/internal/config"
)

// certificateStore holds the serving key pair and swaps it on reload.
type certificateStore struct {
	cfg  config.TLSConfig
	cert atomic.Pointer[tls.Certificate]

	mu          sync.Mutex
	reloads     int64
	failures    int64
	lastReload  time.Time
	lastFailure string
}

// CertificateStats summarizes reload activity for health reporting.
type CertificateStats struct {
	ReloadCount  int64     `json:"reload_count"`
	FailureCount int64     `json:"failure_count"`
	LastReload   time.Time `json:"last_reload,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
}

// newCertificateStore loads the key pair once; a load failure is fatal here
// but only logged on later reloads.
func newCertificateStore(cfg config.TLSConfig) (*certificateStore, error) {
	cs := &certificateStore{cfg: cfg}
	cert, err := loadKeyPair(cfg)
	if err != nil {
		return nil, err
	}
	cs.cert.Store(&cert)
	return cs, nil
}

// loadKeyPair loads the server certificate from content or files
func loadKeyPair(cfg config.TLSConfig) (tls.Certificate, error) {
	certPEM, err := readPEM(cfg.CertContent, cfg.CertFile, "certificate")
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPEM, err := readPEM(cfg.KeyContent, cfg.KeyFile, "private key")
	if err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load server cert/key: %w", err)
	}
	if cert.Leaf == nil {
		if cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0]); err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to parse server certificate: %w", err)
		}
	}
	return cert, nil
}

// Reload re-reads the key pair. The previous pair stays in service when the
// new one cannot be loaded.
func (cs *certificateStore) Reload() error {
	cert, err := loadKeyPair(cs.cfg)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.reloads++
	if err != nil {
		cs.failures++
		cs.lastFailure = err.Error()
		return err
	}
	cs.cert.Store(&cert)
	cs.lastReload = time.Now()
	cs.lastFailure = ""
	return nil
}

// GetCertificate serves the current key pair to the TLS handshake.
func (cs *certificateStore) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cert := cs.cert.Load()
	if cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cert, nil
}

// TimeToExpiry returns how long the current certificate remains valid.
func (cs *certificateStore) TimeToExpiry() (time.Duration, error) {
	cert := cs.cert.Load()
	if cert == nil || cert.Leaf == nil {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cert.Leaf.NotAfter), nil
}

func (cs *certificateStore) Stats() CertificateStats {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return CertificateStats{
		ReloadCount:  cs.reloads,
		FailureCount: cs.failures,
		LastReload:   cs.lastReload,
		LastError:    cs.lastFailure,
	}
}

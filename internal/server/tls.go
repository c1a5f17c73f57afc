package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"resumescore/internal/config"
)

// configureTLS prepares the certificate store and returns the TLS settings
// for the configured mode, or nil when TLS is disabled.
func (s *Server) configureTLS() (*tls.Config, error) {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	certs, err := newCertificateStore(s.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	s.certs = certs

	tlsConfig, err := buildTLSConfig(s.TLSConfig, certs)
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	return tlsConfig, nil
}

// buildTLSConfig creates the TLS configuration
func buildTLSConfig(cfg config.TLSConfig, certs *certificateStore) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:     minTLSVersion(cfg.MinVersion),
		GetCertificate: certs.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}

	if cfg.Mode != "mutual" {
		return tlsConfig, nil
	}

	caPEM, err := readPEM(cfg.CAContent, cfg.CAFile, "CA certificate")
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(caPEM); !ok {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	tlsConfig.ClientCAs = pool
	tlsConfig.ClientAuth = clientAuthPolicy(cfg.ClientAuthPolicy)

	return tlsConfig, nil
}

// readPEM prefers inline content (as loaded from Vault) over a file path.
func readPEM(content, file, what string) ([]byte, error) {
	if content != "" {
		return []byte(content), nil
	}
	if file == "" {
		return nil, fmt.Errorf("TLS %s is required (provide either a file or content)", what)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read TLS %s file: %w", what, err)
	}
	return data, nil
}

func minTLSVersion(version string) uint16 {
	if version == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}

package config

import "fmt"

// pemSource is one piece of TLS material that may come from a file or inline content.
type pemSource struct {
	name    string
	file    string
	content string
}

func (p pemSource) present() bool { return p.file != "" || p.content != "" }

func (p pemSource) ambiguous() error {
	if p.file != "" && p.content != "" {
		return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", p.name, p.name)
	}
	return nil
}

func (t TLSConfig) cert() pemSource { return pemSource{"cert", t.CertFile, t.CertContent} }
func (t TLSConfig) key() pemSource  { return pemSource{"key", t.KeyFile, t.KeyContent} }
func (t TLSConfig) ca() pemSource   { return pemSource{"ca", t.CAFile, t.CAContent} }

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	return c.Server.TLS.Validate()
}

// Validate checks that the material required by the mode is present exactly once.
func (t TLSConfig) Validate() error {
	if err := t.validateMode(); err != nil {
		return err
	}
	return validateTLSVersion(t.MinVersion)
}

func (t TLSConfig) validateMode() error {
	switch t.Mode {
	case "disabled":
		return nil
	case "server", "mutual":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}

	if !t.cert().present() || !t.key().present() {
		return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", t.Mode)
	}
	sources := []pemSource{t.cert(), t.key()}

	if t.Mode == "mutual" {
		if !t.ca().present() {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		sources = append(sources, t.ca())
	}

	for _, src := range sources {
		if err := src.ambiguous(); err != nil {
			return err
		}
	}

	if t.Mode == "mutual" {
		return validateClientAuthPolicy(t.ClientAuthPolicy)
	}
	return nil
}

func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "", "require", "request", "verify":
		return nil
	}
	return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
}

func validateTLSVersion(version string) error {
	switch version {
	case "", "1.2", "1.3":
		return nil
	}
	return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", version)
}

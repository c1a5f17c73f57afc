package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTLSConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{
			name: "disabled mode",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem", KeyFile: "/path/to/key.pem"},
		},
		{
			name: "server mode with content",
			tls:  TLSConfig{Mode: "server", CertContent: "cert", KeyContent: "key"},
		},
		{
			name: "server mode mixing file and content across pieces",
			tls:  TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem", KeyContent: "key"},
		},
		{
			name: "mutual mode valid",
			tls: TLSConfig{
				Mode: "mutual", CertFile: "/c.pem", KeyFile: "/k.pem", CAFile: "/ca.pem",
				ClientAuthPolicy: "verify",
			},
		},
		{
			name:     "invalid mode",
			tls:      TLSConfig{Mode: "invalid"},
			errorMsg: "invalid TLS mode: invalid",
		},
		{
			name:     "server mode missing key",
			tls:      TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem"},
			errorMsg: "TLS certificate and key are required for server mode",
		},
		{
			name:     "server mode duplicate cert source",
			tls:      TLSConfig{Mode: "server", CertFile: "/c.pem", CertContent: "cert", KeyFile: "/k.pem"},
			errorMsg: "cannot specify both certFile and certContent - choose one",
		},
		{
			name:     "server mode duplicate key source",
			tls:      TLSConfig{Mode: "server", CertFile: "/c.pem", KeyFile: "/k.pem", KeyContent: "key"},
			errorMsg: "cannot specify both keyFile and keyContent - choose one",
		},
		{
			name:     "mutual mode missing certificate",
			tls:      TLSConfig{Mode: "mutual", CAFile: "/ca.pem"},
			errorMsg: "TLS certificate and key are required for mutual mode",
		},
		{
			name:     "mutual mode missing CA",
			tls:      TLSConfig{Mode: "mutual", CertFile: "/c.pem", KeyFile: "/k.pem"},
			errorMsg: "CA certificate is required for mutual TLS mode",
		},
		{
			name:     "mutual mode duplicate CA source",
			tls:      TLSConfig{Mode: "mutual", CertFile: "/c.pem", KeyFile: "/k.pem", CAFile: "/ca.pem", CAContent: "ca"},
			errorMsg: "cannot specify both caFile and caContent - choose one",
		},
		{
			name: "mutual mode invalid client auth policy",
			tls: TLSConfig{
				Mode: "mutual", CertFile: "/c.pem", KeyFile: "/k.pem", CAFile: "/ca.pem",
				ClientAuthPolicy: "maybe",
			},
			errorMsg: "invalid clientAuthPolicy: maybe",
		},
		{
			name:     "server mode ignores client auth policy",
			tls:      TLSConfig{Mode: "server", CertFile: "/c.pem", KeyFile: "/k.pem", ClientAuthPolicy: "maybe"},
			errorMsg: "",
		},
		{
			name:     "invalid min version",
			tls:      TLSConfig{Mode: "disabled", MinVersion: "1.1"},
			errorMsg: "invalid TLS minVersion: 1.1",
		},
		{
			name: "TLS 1.3",
			tls:  TLSConfig{Mode: "server", CertFile: "/c.pem", KeyFile: "/k.pem", MinVersion: "1.3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tls.Validate()
			if tt.errorMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTLSConfigUsesServerSettings(t *testing.T) {
	cfg := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "bogus"}}}
	assert.Error(t, cfg.ValidateTLSConfig())

	cfg.Server.TLS.Mode = "disabled"
	assert.NoError(t, cfg.ValidateTLSConfig())
}

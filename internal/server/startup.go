package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.Host, s.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// Background watchers for certificates and API keys run for the same span.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	tlsConfig, err := s.configureTLS()
	if err != nil {
		_ = ln.Close()
		return err
	}

	httpServer := &http.Server{
		Handler:      s.Handler(),
		TLSConfig:    tlsConfig,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	if err := s.startCertWatcher(); err != nil {
		_ = ln.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.keyWatcher != nil {
		go s.keyWatcher.Run(ctx)
	}

	s.displayServerInfo(ln.Addr().String(), tlsConfig != nil)

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", ln.Addr().String(),
			"tls_enabled", tlsConfig != nil)

		var err error
		if tlsConfig != nil {
			// Certificates come from TLSConfig.GetCertificate.
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			err = httpServer.Serve(ln)
		}
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.stopBackground()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(httpServer)
	}
}

// startCertWatcher hot-reloads file-based certificates when enabled.
func (s *Server) startCertWatcher() error {
	if s.certs == nil || !s.TLSConfig.AutoReload.Enabled {
		return nil
	}
	files := []string{s.TLSConfig.CertFile, s.TLSConfig.KeyFile}
	if s.TLSConfig.CertFile == "" && s.TLSConfig.KeyFile == "" {
		s.Logger.Info("TLS auto-reload skipped: certificates were loaded from content")
		return nil
	}

	s.certWatcher = NewCertWatcher(files, s.TLSConfig.AutoReload.DebounceDelay, s.reloadCertificates, s.Logger)
	if err := s.certWatcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}
	return nil
}

func (s *Server) reloadCertificates() {
	err := s.certs.Reload()
	s.Observability.Metrics().RecordCertReload(context.Background(), err == nil)
	if err != nil {
		s.Logger.LogError(err, "Failed to reload TLS certificates, keeping the previous pair")
		return
	}
	s.Logger.Info("TLS certificates reloaded successfully")
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.stopBackground()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// stopBackground stops the certificate watcher and the rate limiter sweeper.
func (s *Server) stopBackground() {
	if s.certWatcher != nil {
		if err := s.certWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
}

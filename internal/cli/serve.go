package cli

import (
	"context"
	"fmt"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/observability"
	"resumescore/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const observabilityShutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for resume scoring",
		Long: `Start an HTTP server that provides REST API endpoints for resume scoring.

Available endpoints:
- POST /score: Score resume text
- POST /score/file: Score an uploaded resume file (multipart field "file")
- POST /score/batch: Score up to 50 resumes in one request
- GET /dimensions: Scoring dimensions and weights
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.mode", "tls-mode")
	bindFlag("server.tls.certFile", "cert-file")
	bindFlag("server.tls.keyFile", "key-file")
	bindFlag("server.tls.caFile", "ca-file")

	return serveCmd
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	cfg, logger, err := contextDeps(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	vault, err := config.ApplyVaultSecrets(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to apply vault secrets: %w", err)
	}

	// Vault may have supplied TLS material, so the check runs after it.
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	obs, err := observability.NewObservabilityManager(observability.SettingsFromConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observabilityShutdownTimeout)
		defer cancel()
		if shutdownErr := obs.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.LogError(shutdownErr, "Failed to shut down observability")
			if err == nil {
				err = shutdownErr
			}
		}
	}()

	deps := server.Dependencies{
		Observability: obs,
		Logger:        logger,
	}
	if vault != nil {
		deps.KeySource = vault
	}

	return server.NewServer(cfg, Version, deps).Start(ctx)
}

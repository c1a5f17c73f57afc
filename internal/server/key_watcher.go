package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
)

// KeySource supplies the current API key set and the version it was read at.
// *config.VaultClient implements it.
type KeySource interface {
	APIKeys(ctx context.Context) ([]string, int64, error)
}

// RotationRecorder counts key rotation attempts.
type RotationRecorder interface {
	RecordKeyRotation(ctx context.Context, success bool)
}

// keyRelease is one read of the key source.
type keyRelease struct {
	keys    []string
	version int64
}

// KeyWatcher polls a KeySource and installs a new key set whenever its
// version moves forward. Reads go through a circuit breaker so an unavailable
// Vault is not hammered; the last good key set stays active meanwhile.
type KeyWatcher struct {
	source       KeySource
	keys         *KeySet
	pollInterval time.Duration
	breaker      *CircuitBreaker[keyRelease]
	recorder     RotationRecorder
	logger       *errors.Logger

	mu        sync.Mutex
	rotations int64
	lastCheck time.Time
	lastError string
}

// NewKeyWatcher creates a watcher that updates keys in place.
func NewKeyWatcher(source KeySource, keys *KeySet, cfg config.KeyRotationConfig, recorder RotationRecorder, logger *errors.Logger) *KeyWatcher {
	return &KeyWatcher{
		source:       source,
		keys:         keys,
		pollInterval: cfg.PollInterval,
		breaker:      NewCircuitBreaker[keyRelease]("vault-api-keys", cfg.CircuitBreaker, logger),
		recorder:     recorder,
		logger:       logger,
	}
}

// Run polls until ctx is cancelled.
func (kw *KeyWatcher) Run(ctx context.Context) {
	kw.logger.Info("API key watcher started", "poll_interval", kw.pollInterval)

	if _, err := kw.Poll(ctx); err != nil {
		kw.logger.LogError(err, "Initial API key check failed")
	}

	ticker := time.NewTicker(kw.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := kw.Poll(ctx); err != nil {
				kw.logger.LogError(err, "Failed to check Vault for rotated API keys")
			}
		case <-ctx.Done():
			kw.logger.Info("API key watcher stopped")
			return
		}
	}
}

// Poll reads the key source once and reports whether a new key set was installed.
func (kw *KeyWatcher) Poll(ctx context.Context) (bool, error) {
	release, err := kw.breaker.Execute(func() (keyRelease, error) {
		keys, version, err := kw.source.APIKeys(ctx)
		return keyRelease{keys: keys, version: version}, err
	})
	if err == nil && release.version > kw.keys.Version() && len(release.keys) == 0 {
		err = fmt.Errorf("key set version %d is empty; keeping version %d", release.version, kw.keys.Version())
	}

	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.lastCheck = time.Now()

	if err != nil {
		kw.lastError = err.Error()
		kw.recorder.RecordKeyRotation(ctx, false)
		return false, err
	}
	kw.lastError = ""

	if release.version <= kw.keys.Version() {
		return false, nil
	}

	previous := kw.keys.Version()
	kw.keys.Replace(release.keys, release.version)
	if previous == 0 {
		// Keys loaded at startup carry no version; the first read only tags them.
		kw.logger.Info("API key set version recorded", "version", release.version, "key_count", len(release.keys))
		return true, nil
	}
	kw.rotations++
	kw.recorder.RecordKeyRotation(ctx, true)
	kw.logger.Info("API keys rotated",
		"previous_version", previous,
		"version", release.version,
		"key_count", len(release.keys))
	return true, nil
}

// Status returns the current status of the KeyWatcher for health reporting
func (kw *KeyWatcher) Status() map[string]any {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	return map[string]any{
		"enabled":         true,
		"poll_interval":   kw.pollInterval.String(),
		"current_version": kw.keys.Version(),
		"rotations":       kw.rotations,
		"last_check":      kw.lastCheck,
		"last_error":      kw.lastError,
		"circuit_breaker": kw.breaker.GetStats(),
	}
}

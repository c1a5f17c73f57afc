package observability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration. An empty Port
// exposes the handler through MetricsHandler without starting a listener.
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// prometheusEndpoint owns a private registry so several managers can coexist
// in one process.
type prometheusEndpoint struct {
	config   PrometheusConfig
	registry *prometheus.Registry
	reader   sdkmetric.Reader
	handler  http.Handler
	server   *http.Server
}

func newPrometheusEndpoint(config PrometheusConfig) (*prometheusEndpoint, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	return &prometheusEndpoint{
		config:   config,
		registry: registry,
		reader:   exporter,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, nil
}

// start serves the registry on its own port in the background.
func (p *prometheusEndpoint) start() error {
	if p.config.Port == "" {
		return nil
	}

	endpoint := p.config.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(endpoint, p.handler)

	listener, err := net.Listen("tcp", ":"+p.config.Port)
	if err != nil {
		return fmt.Errorf("failed to start Prometheus server: %w", err)
	}

	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Printf("Prometheus metrics available at http://%s%s", listener.Addr(), endpoint)

	go func() {
		if err := p.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Prometheus server error: %v", err)
		}
	}()
	return nil
}

func (p *prometheusEndpoint) shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}

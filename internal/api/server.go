// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the link expander service.
package api

import (
	_ "embed"
	"linkexpander/internal/api/handler/v1handler"
	"linkexpander/internal/config"
	"linkexpander/pkg/controller"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

const timeoutBody = `{"error":"request timed out"}`

// Options holds configuration for the HTTP server.
// It is typically created from a config.Config via NewOptions.
// Zero durations leave the corresponding net/http default in place.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// CORSAllowOrigin is the origin allowed to call the API from a browser.
	CORSAllowOrigin string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		CORSAllowOrigin:   cfg.HTTP.CORSAllowOrigin,
	}
}

// Deps are the services backing the API handlers.
type Deps struct {
	v1handler.Deps
}

// NewHandler returns the root handler serving:
// - Prometheus metrics (MetricsPath)
// - the embedded OpenAPI v1 spec and its Swagger UI
// - the v1 API routes
// - pprof endpoints for profiling
// wrapped with CORS and logging middlewares.
func NewHandler(deps Deps, opts Options) http.Handler {
	mux := http.NewServeMux()

	// prometheus metrics server; otel instruments are exported to the same
	// default registry by metrics.NewMeterProvider
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, promhttp.Handler())
	}

	// v1 specs file
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"Link Expander",
		"/specs/v1.yaml",
		"/v1/docs/",
	))
	// v1 api
	v1handler.New(deps.Deps).Routes(mux)

	// pprof
	mux.Handle("/debug/pprof/", controller.Pprof("/debug/pprof/"))

	handler := controller.CORS(opts.CORSAllowOrigin)(mux)

	return controller.WithLogger(handler)
}

// NewServer wires up and returns a configured *http.Server using the provided
// Options. Requests taking longer than RequestTimeout are answered with 503.
func NewServer(deps Deps, opts Options) *http.Server {
	handler := NewHandler(deps, opts)
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}

// Package resolver follows the redirect chain of a possibly shortened URL and
// reports where it ends.
package resolver

import (
	"context"
	"errors"
	"linkexpander/internal/config"
	"linkexpander/pkg/serrors"
	"net/http"
	"time"
)

// DefaultMaxRedirects matches net/http's own limit.
const DefaultMaxRedirects = 10

// ErrTooManyRedirects is returned when the chain is longer than MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Options configure the outbound HEAD request.
type Options struct {
	// MaxRedirects bounds the number of hops followed. Zero means DefaultMaxRedirects.
	MaxRedirects int
	// Timeout bounds the whole chain. Zero means no limit besides ctx.
	Timeout time.Duration
	// UserAgent is sent when non-empty.
	UserAgent string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxRedirects: cfg.Pipeline.MaxRedirects,
		Timeout:      cfg.Pipeline.OutboundTimeout,
		UserAgent:    cfg.Pipeline.UserAgent,
	}
}

// Resolver issues a HEAD request and lets the transport follow redirects.
type Resolver struct {
	client  *http.Client
	options Options
}

// New returns a Resolver using a copy of httpClient whose redirect policy is
// bounded by options.MaxRedirects. httpClient itself is not modified.
func New(httpClient *http.Client, options Options) *Resolver {
	if options.MaxRedirects <= 0 {
		options.MaxRedirects = DefaultMaxRedirects
	}

	c := *httpClient
	c.CheckRedirect = redirectPolicy(options.MaxRedirects)

	return &Resolver{
		client:  &c,
		options: options,
	}
}

func redirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return ErrTooManyRedirects
		}

		return nil
	}
}

// Resolve returns the URL of the last request in the redirect chain starting
// at shortURL, or shortURL itself when the transport reports none. The status
// code of the final response is not inspected.
func (r *Resolver) Resolve(ctx context.Context, shortURL string) (string, error) {
	if r.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, shortURL, nil)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrResolutionFailed, err, "could not create request")
	}
	if r.options.UserAgent != "" {
		req.Header.Set("User-Agent", r.options.UserAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrResolutionFailed, err, "could not follow redirects")
	}
	_ = resp.Body.Close()

	if resp.Request == nil || resp.Request.URL == nil {
		return shortURL, nil
	}
	final := resp.Request.URL.String()
	if final == "" {
		return shortURL, nil
	}

	return final, nil
}


// Package metadata fetches a document and pulls its title and meta
// description out of the markup.
package metadata

import (
	"bytes"
	"context"
	"io"
	"linkexpander/internal/config"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/serrors"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Options configure the outbound GET request.
type Options struct {
	// Timeout bounds fetching and reading the document. Zero means no limit besides ctx.
	Timeout time.Duration
	// UserAgent is sent when non-empty.
	UserAgent string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Timeout:   cfg.Pipeline.OutboundTimeout,
		UserAgent: cfg.Pipeline.UserAgent,
	}
}

// Extractor fetches documents over HTTP and parses them with goquery.
type Extractor struct {
	client  *http.Client
	options Options
}

// New returns an Extractor sending its requests through httpClient.
func New(httpClient *http.Client, options Options) *Extractor {
	return &Extractor{
		client:  httpClient,
		options: options,
	}
}

// Extract downloads URL and returns its first <title> text and the content of
// its first meta[name="description"]. Missing or empty values are replaced by
// domain.NoTitle and domain.NoDescription. The response status is not checked:
// an error page is parsed like any other document.
func (e *Extractor) Extract(ctx context.Context, URL string) (domain.Metadata, error) {
	if e.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.options.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, http.NoBody)
	if err != nil {
		return domain.Metadata{}, serrors.Wrap(serrors.ErrExtractionFailed, err, "could not create request")
	}
	if e.options.UserAgent != "" {
		req.Header.Set("User-Agent", e.options.UserAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.Metadata{}, serrors.Wrap(serrors.ErrExtractionFailed, err, "could not fetch document")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Metadata{}, serrors.Wrap(serrors.ErrExtractionFailed, err, "could not read document")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return domain.Metadata{}, serrors.Wrap(serrors.ErrExtractionFailed, err, "could not parse document")
	}

	return Parse(doc), nil
}

// Parse reads the title and description out of an already parsed document.
func Parse(doc *goquery.Document) domain.Metadata {
	meta := domain.Metadata{
		Title:       doc.Find("title").First().Text(),
		Description: doc.Find(`meta[name="description"]`).First().AttrOr("content", ""),
	}
	if meta.Title == "" {
		meta.Title = domain.NoTitle
	}
	if meta.Description == "" {
		meta.Description = domain.NoDescription
	}

	return meta
}

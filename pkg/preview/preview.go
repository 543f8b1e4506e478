// Package preview builds links to an external screenshot renderer. Nothing is
// fetched here; the caller hands the link to whoever displays the preview.
package preview

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the microlink API endpoint.
const DefaultBaseURL = "https://api.microlink.io/"

// fixedParams are appended after the target URL, in this order.
var fixedParams = []string{ //nolint: gochecknoglobals
	"screenshot=true",
	"meta=false",
	"embed=screenshot.url",
	"colorScheme=dark",
	"viewport.isMobile=true",
	"viewport.deviceScaleFactor=1",
	"viewport.width=1280",
	"viewport.height=720",
}

// Builder builds screenshot links against a renderer base URL.
type Builder struct {
	base string
}

// New returns a Builder for baseURL, or for DefaultBaseURL when empty.
func New(baseURL string) (*Builder, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse screenshot base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("screenshot base URL must be absolute: %q", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	return &Builder{base: u.String()}, nil
}

// ScreenshotURL returns the link rendering a dark, mobile 1280x720 screenshot
// of target.
func (b *Builder) ScreenshotURL(target string) string {
	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString("?url=")
	sb.WriteString(url.QueryEscape(target))
	for _, p := range fixedParams {
		sb.WriteByte('&')
		sb.WriteString(p)
	}

	return sb.String()
}

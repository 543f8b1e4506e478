package domain

const (
	// NoTitle is reported when the destination document has no usable <title>.
	NoTitle = "No title found"
	// NoDescription is reported when the destination document has no usable
	// meta description.
	NoDescription = "No description found"
)

// Metadata holds the two text fields extracted from the destination document.
type Metadata struct {
	Title       string
	Description string
}

// Verdict is the outcome of the trust assessment of a URL.
type Verdict struct {
	// TrustScore is always one of 0, 80 or 100.
	TrustScore int
	// IsSafe is false iff the threat-intelligence lookup reported a match.
	IsSafe bool
}

// ThreatMatch is a single hit reported by a threat-intelligence provider.
type ThreatMatch struct {
	ThreatType   string
	PlatformType string
	URL          string
}

// ExpansionResult is the consolidated assessment of one input URL. A fresh
// value is built for every request and never stored by the pipeline itself.
type ExpansionResult struct {
	// OriginalURL is the input exactly as provided by the caller.
	OriginalURL string `json:"originalUrl"`
	// ExpandedURL is the terminal URL of the redirect chain.
	ExpandedURL string `json:"expandedUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TrustScore  int    `json:"trustScore"`
	IsSafe      bool   `json:"isSafe"`
}

// NewExpansionResult assembles a result from the outputs of the pipeline stages.
func NewExpansionResult(originalURL, expandedURL string, meta Metadata, verdict Verdict) *ExpansionResult {
	return &ExpansionResult{
		OriginalURL: originalURL,
		ExpandedURL: expandedURL,
		Title:       meta.Title,
		Description: meta.Description,
		TrustScore:  verdict.TrustScore,
		IsSafe:      verdict.IsSafe,
	}
}

// Package trust turns a URL into a trust score and a safety flag.
//
// The score is built additively: 20 points for an https scheme and 80 points
// for a clean threat-intelligence lookup. Any reported threat resets it to 0,
// so the only reachable scores are 0, 80 and 100.
package trust

import (
	"context"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/serrors"
	"linkexpander/pkg/threatintel"
	"net/url"
)

const (
	// SchemeBonus is awarded to https URLs.
	SchemeBonus = 20
	// CleanLookupBonus is awarded when the threat lookup reports no match.
	CleanLookupBonus = 80
)

// Assessor scores URLs using a threatintel.Client.
type Assessor struct {
	threats threatintel.Client
}

// New returns an Assessor querying threats for every assessment.
func New(threats threatintel.Client) *Assessor {
	return &Assessor{threats: threats}
}

// Assess computes the Verdict for URL. It never substitutes a default verdict:
// when the lookup fails the error is returned as serrors.ErrAssessmentFailed.
func (a *Assessor) Assess(ctx context.Context, URL string) (domain.Verdict, error) {
	u, err := url.Parse(URL)
	if err != nil {
		return domain.Verdict{}, serrors.Wrap(serrors.ErrAssessmentFailed, err, "could not parse URL")
	}

	verdict := domain.Verdict{IsSafe: true}
	if u.Scheme == "https" {
		verdict.TrustScore += SchemeBonus
	}

	matches, err := a.threats.FindMatches(ctx, URL)
	if err != nil {
		return domain.Verdict{}, serrors.Wrap(serrors.ErrAssessmentFailed, err, "could not look up threats")
	}

	if len(matches) > 0 {
		verdict.IsSafe = false
		verdict.TrustScore = 0
	} else {
		verdict.TrustScore += CleanLookupBonus
	}

	return verdict, nil
}

// Package threatintel defines the abstraction over external services that
// classify URLs against known threat lists.
package threatintel

import (
	"context"
	"linkexpander/pkg/domain"
)

// Client looks URLs up in a threat-intelligence provider.
//
//go:generate mockgen -package mockthreatintel -source=interface.go -destination=mock/mockthreatintel.go *
type Client interface {
	// FindMatches reports every threat entry the provider holds for URL. An
	// empty slice means the provider knows of no threat.
	FindMatches(ctx context.Context, URL string) ([]domain.ThreatMatch, error)
}

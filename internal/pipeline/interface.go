package pipeline

import (
	"context"
	"linkexpander/pkg/domain"
)

//go:generate mockgen -package mockpipeline -source=interface.go -destination=mock/mockpipeline.go *

// Pipeline expands a single input URL into an ExpansionResult.
type Pipeline interface {
	// Run resolves inputURL, then extracts metadata and assesses trust of the
	// resolved URL. Failures are returned as serrors.ErrInvalidInput for an
	// empty input and as serrors.ErrPipelineFailed otherwise.
	Run(ctx context.Context, inputURL string) (*domain.ExpansionResult, error)
}

// Resolver follows the redirect chain of a URL.
type Resolver interface {
	Resolve(ctx context.Context, shortURL string) (string, error)
}

// Extractor reads the title and description of a document.
type Extractor interface {
	Extract(ctx context.Context, URL string) (domain.Metadata, error)
}

// Assessor computes the trust verdict of a URL.
type Assessor interface {
	Assess(ctx context.Context, URL string) (domain.Verdict, error)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"linkexpander/internal/config"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/logger"
	"linkexpander/pkg/metrics"
	"linkexpander/pkg/serrors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	meterName = "linkexpander/pipeline"
	// outcomeOK labels successful runs; failed runs are labelled with their kind.
	outcomeOK = "OK"
)

// Options configure a pipeline run. They are typically derived from
// application configuration via NewOptions.
type Options struct {
	// Deadline bounds a whole run, all stages included. Zero disables it.
	Deadline time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Deadline: cfg.Pipeline.Deadline,
	}
}

// Deps are the stages a pipeline is assembled from.
type Deps struct {
	Resolver  Resolver
	Extractor Extractor
	Assessor  Assessor
	// MeterProvider records run counts and durations. Optional.
	MeterProvider metric.MeterProvider
}

// pipeline is the concrete implementation of the Pipeline interface.
type pipeline struct {
	deps    Deps
	options Options

	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// New assembles a Pipeline from its stages.
func New(deps Deps, options Options) (Pipeline, error) {
	if deps.Resolver == nil || deps.Extractor == nil || deps.Assessor == nil {
		return nil, errors.New("resolver, extractor and assessor are required")
	}

	p := &pipeline{
		deps:    deps,
		options: options,
	}
	if deps.MeterProvider == nil {
		return p, nil
	}

	meter := deps.MeterProvider.Meter(meterName)
	var err error
	p.runs, err = meter.Int64Counter("pipeline_runs",
		metric.WithDescription("Number of pipeline runs by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create runs counter: %w", err)
	}
	p.duration, err = meter.Float64Histogram("pipeline_duration",
		metric.WithDescription("Duration of pipeline runs."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return p, nil
}

// Run executes the stages in order: the resolver first, then the extractor
// and the assessor concurrently on the resolved URL. Both must succeed. The
// stage error is kept as the cause of the returned serrors.ErrPipelineFailed.
func (p *pipeline) Run(ctx context.Context, inputURL string) (*domain.ExpansionResult, error) {
	start := time.Now()

	if inputURL == "" {
		err := serrors.With(serrors.ErrInvalidInput, "URL is required")
		p.record(ctx, start, err)

		return nil, err
	}

	ctx = logger.WithFields(ctx, zap.String("inputURL", inputURL))
	if p.options.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.options.Deadline)
		defer cancel()
	}

	res, err := p.run(ctx, inputURL)
	p.record(ctx, start, err)
	if err != nil {
		fields := []zap.Field{zap.String("stage", outcome(err)), zap.Error(err)}
		if cause := serrors.Innermost(err); cause != nil {
			fields = append(fields, zap.String("cause", cause.Error()))
		}
		logger.Warn(ctx, "pipeline failed", fields...)

		return nil, serrors.Wrap(serrors.ErrPipelineFailed, err, "could not expand URL")
	}

	logger.Debug(ctx, "pipeline completed",
		zap.String("expandedURL", res.ExpandedURL),
		zap.Int("trustScore", res.TrustScore),
		zap.Bool("isSafe", res.IsSafe))

	return res, nil
}

func (p *pipeline) run(ctx context.Context, inputURL string) (*domain.ExpansionResult, error) {
	expandedURL, err := p.deps.Resolver.Resolve(ctx, inputURL)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}
	if expandedURL == "" {
		expandedURL = inputURL
	}

	var (
		meta    domain.Metadata
		verdict domain.Verdict
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta, err = p.deps.Extractor.Extract(gctx, expandedURL)

		return err //nolint: wrapcheck
	})
	g.Go(func() error {
		var err error
		verdict, err = p.deps.Assessor.Assess(gctx, expandedURL)

		return err //nolint: wrapcheck
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint: wrapcheck
	}

	return domain.NewExpansionResult(inputURL, expandedURL, meta, verdict), nil
}

func (p *pipeline) record(ctx context.Context, start time.Time, err error) {
	if p.runs == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome(err)))
	p.runs.Add(ctx, 1, attrs)
	p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

// outcome returns the kind of the outermost serrors.Error in err, which for a
// stage failure is the stage's own kind.
func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}

	var se *serrors.Error
	if errors.As(err, &se) && se.Kind() != nil {
		return se.Kind().Error()
	}

	return serrors.ErrInternal.Error()
}

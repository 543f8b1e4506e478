package pipeline_test

import (
	"context"
	"errors"
	"io"
	"linkexpander/internal/metadata"
	"linkexpander/internal/pipeline"
	"linkexpander/internal/resolver"
	"linkexpander/internal/trust"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/serrors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mockpipeline "linkexpander/internal/pipeline/mock"
	mockthreatintel "linkexpander/pkg/threatintel/mock"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"
)

const (
	shortURL = "https://sho.rt/abc"
	longURL  = "https://example.com/article"
)

type stages struct {
	resolver  *mockpipeline.MockResolver
	extractor *mockpipeline.MockExtractor
	assessor  *mockpipeline.MockAssessor
}

func newTestPipeline(t *testing.T, opts pipeline.Options) (stages, pipeline.Pipeline) {
	t.Helper()

	ctrl := gomock.NewController(t)
	s := stages{
		resolver:  mockpipeline.NewMockResolver(ctrl),
		extractor: mockpipeline.NewMockExtractor(ctrl),
		assessor:  mockpipeline.NewMockAssessor(ctrl),
	}
	p, err := pipeline.New(pipeline.Deps{
		Resolver:  s.resolver,
		Extractor: s.extractor,
		Assessor:  s.assessor,
	}, opts)
	require.NoError(t, err)

	return s, p
}

func TestNew_RequiresStages(t *testing.T) {
	_, err := pipeline.New(pipeline.Deps{}, pipeline.Options{})
	require.Error(t, err)
}

func TestRun_Success(t *testing.T) {
	s, p := newTestPipeline(t, pipeline.Options{})

	meta := domain.Metadata{Title: "Example", Description: "An article"}
	verdict := domain.Verdict{TrustScore: 100, IsSafe: true}
	s.resolver.EXPECT().Resolve(gomock.Any(), shortURL).Return(longURL, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), longURL).Return(meta, nil)
	s.assessor.EXPECT().Assess(gomock.Any(), longURL).Return(verdict, nil)

	res, err := p.Run(context.Background(), shortURL)
	require.NoError(t, err)
	require.Equal(t, &domain.ExpansionResult{
		OriginalURL: shortURL,
		ExpandedURL: longURL,
		Title:       "Example",
		Description: "An article",
		TrustScore:  100,
		IsSafe:      true,
	}, res)
}

func TestRun_EmptyResolutionFallsBackToInput(t *testing.T) {
	s, p := newTestPipeline(t, pipeline.Options{})

	s.resolver.EXPECT().Resolve(gomock.Any(), shortURL).Return("", nil)
	s.extractor.EXPECT().Extract(gomock.Any(), shortURL).
		Return(domain.Metadata{Title: domain.NoTitle, Description: domain.NoDescription}, nil)
	s.assessor.EXPECT().Assess(gomock.Any(), shortURL).Return(domain.Verdict{TrustScore: 100, IsSafe: true}, nil)

	res, err := p.Run(context.Background(), shortURL)
	require.NoError(t, err)
	require.Equal(t, shortURL, res.ExpandedURL)
}

func TestRun_EmptyInputMakesNoCalls(t *testing.T) {
	_, p := newTestPipeline(t, pipeline.Options{})

	res, err := p.Run(context.Background(), "")
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrInvalidInput)
	require.NotErrorIs(t, err, serrors.ErrPipelineFailed)
}

func TestRun_StageFailuresCollapse(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(s stages)
		kind  serrors.Kind
	}{
		{
			name: "resolver",
			setup: func(s stages) {
				s.resolver.EXPECT().Resolve(gomock.Any(), shortURL).
					Return("", serrors.Wrap(serrors.ErrResolutionFailed, boom, "could not follow redirects"))
			},
			kind: serrors.ErrResolutionFailed,
		},
		{
			name: "extractor",
			setup: func(s stages) {
				s.resolver.EXPECT().Resolve(gomock.Any(), shortURL).Return(longURL, nil)
				s.extractor.EXPECT().Extract(gomock.Any(), longURL).
					Return(domain.Metadata{}, serrors.Wrap(serrors.ErrExtractionFailed, boom, "could not fetch document"))
				s.assessor.EXPECT().Assess(gomock.Any(), longURL).
					Return(domain.Verdict{TrustScore: 100, IsSafe: true}, nil).AnyTimes()
			},
			kind: serrors.ErrExtractionFailed,
		},
		{
			name: "assessor",
			setup: func(s stages) {
				s.resolver.EXPECT().Resolve(gomock.Any(), shortURL).Return(longURL, nil)
				s.extractor.EXPECT().Extract(gomock.Any(), longURL).
					Return(domain.Metadata{Title: "t", Description: "d"}, nil).AnyTimes()
				s.assessor.EXPECT().Assess(gomock.Any(), longURL).
					Return(domain.Verdict{}, serrors.Wrap(serrors.ErrAssessmentFailed, boom, "could not look up threats"))
			},
			kind: serrors.ErrAssessmentFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, p := newTestPipeline(t, pipeline.Options{})
			tc.setup(s)

			res, err := p.Run(context.Background(), shortURL)
			require.Nil(t, res)
			require.ErrorIs(t, err, serrors.ErrPipelineFailed)
			require.ErrorIs(t, err, tc.kind)
			require.ErrorIs(t, err, boom)
		})
	}
}

func TestRun_Deadline(t *testing.T) {
	s, p := newTestPipeline(t, pipeline.Options{Deadline: 20 * time.Millisecond})

	s.resolver.EXPECT().Resolve(gomock.Any(), shortURL).DoAndReturn(
		func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()

			return "", serrors.Wrap(serrors.ErrResolutionFailed, ctx.Err(), "could not follow redirects")
		})

	_, err := p.Run(context.Background(), shortURL)
	require.ErrorIs(t, err, serrors.ErrPipelineFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := mockpipeline.NewMockResolver(ctrl)
	ext := mockpipeline.NewMockExtractor(ctrl)
	ass := mockpipeline.NewMockAssessor(ctrl)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	p, err := pipeline.New(pipeline.Deps{
		Resolver:      res,
		Extractor:     ext,
		Assessor:      ass,
		MeterProvider: mp,
	}, pipeline.Options{})
	require.NoError(t, err)

	res.EXPECT().Resolve(gomock.Any(), shortURL).Return(longURL, nil)
	ext.EXPECT().Extract(gomock.Any(), longURL).Return(domain.Metadata{Title: "t", Description: "d"}, nil)
	ass.EXPECT().Assess(gomock.Any(), longURL).Return(domain.Verdict{TrustScore: 80, IsSafe: true}, nil)

	_, err = p.Run(context.Background(), shortURL)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "")
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "pipeline_runs" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[v.AsString()] += dp.Value
			}
		}
	}
	require.Equal(t, map[string]int64{"OK": 1, "INVALID_INPUT": 1}, counts)
}

// TestRun_EndToEnd wires the real stages against a local redirect chain and a
// mocked threat provider.
func TestRun_EndToEnd(t *testing.T) {
	page := `<html><head><title>Example Domain</title>` +
		`<meta name="description" content="Illustrative examples"></head></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/s", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusFound)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, page)
	})
	mux.HandleFunc("/bare", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html><body>nothing here</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tests := []struct {
		name    string
		input   string
		matches []domain.ThreatMatch
		want    domain.ExpansionResult
	}{
		{
			name:  "clean redirect over http",
			input: srv.URL + "/s",
			want: domain.ExpansionResult{
				OriginalURL: srv.URL + "/s",
				ExpandedURL: srv.URL + "/landing",
				Title:       "Example Domain",
				Description: "Illustrative examples",
				TrustScore:  80,
				IsSafe:      true,
			},
		},
		{
			name:    "flagged destination",
			input:   srv.URL + "/s",
			matches: []domain.ThreatMatch{{ThreatType: "MALWARE"}},
			want: domain.ExpansionResult{
				OriginalURL: srv.URL + "/s",
				ExpandedURL: srv.URL + "/landing",
				Title:       "Example Domain",
				Description: "Illustrative examples",
				TrustScore:  0,
				IsSafe:      false,
			},
		},
		{
			name:  "no redirect and no metadata",
			input: srv.URL + "/bare",
			want: domain.ExpansionResult{
				OriginalURL: srv.URL + "/bare",
				ExpandedURL: srv.URL + "/bare",
				Title:       domain.NoTitle,
				Description: domain.NoDescription,
				TrustScore:  80,
				IsSafe:      true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			threats := mockthreatintel.NewMockClient(ctrl)
			threats.EXPECT().FindMatches(gomock.Any(), tc.want.ExpandedURL).Return(tc.matches, nil)

			p, err := pipeline.New(pipeline.Deps{
				Resolver:  resolver.New(srv.Client(), resolver.Options{}),
				Extractor: metadata.New(srv.Client(), metadata.Options{}),
				Assessor:  trust.New(threats),
			}, pipeline.Options{Deadline: 5 * time.Second})
			require.NoError(t, err)

			got, err := p.Run(context.Background(), tc.input)
			require.NoError(t, err)
			require.Equal(t, &tc.want, got)
		})
	}
}

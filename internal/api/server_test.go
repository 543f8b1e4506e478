package api_test

import (
	"context"
	"linkexpander/internal/api"
	"linkexpander/internal/api/handler/v1handler"
	"linkexpander/internal/history"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/storage/memory"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mockpipeline "linkexpander/internal/pipeline/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, opts api.Options) (*mockpipeline.MockPipeline, *httptest.Server) {
	t.Helper()

	ctrl := gomock.NewController(t)
	p := mockpipeline.NewMockPipeline(ctrl)
	c, err := history.New(context.Background(), memory.New(), history.Options{})
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(api.Deps{Deps: v1handler.Deps{
		Pipeline: p,
		History:  c,
	}}, opts).Handler)
	t.Cleanup(srv.Close)

	return p, srv
}

func TestServer_Routes(t *testing.T) {
	_, srv := newTestServer(t, api.Options{MetricsPath: "/metrics"})

	tests := []struct {
		path        string
		contentType string
	}{
		{"/specs/v1.yaml", "application/yaml"},
		{"/v1/docs/", "text/html"},
		{"/metrics", "text/plain"},
		{"/debug/pprof/", "text/html"},
		{"/v1/history", "application/json"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			res, err := http.Get(srv.URL + tc.path)
			require.NoError(t, err)
			defer res.Body.Close()

			require.Equal(t, http.StatusOK, res.StatusCode)
			require.Contains(t, res.Header.Get("Content-Type"), tc.contentType)
			require.NotEmpty(t, res.Header.Get("X-Request-Id"))
			require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestServer_Expand(t *testing.T) {
	p, srv := newTestServer(t, api.Options{RequestTimeout: time.Second})

	p.EXPECT().Run(gomock.Any(), "https://bit.ly/x").Return(&domain.ExpansionResult{
		OriginalURL: "https://bit.ly/x",
		ExpandedURL: "https://example.com/",
		Title:       "Example Domain",
		Description: "An example",
		TrustScore:  100,
		IsSafe:      true,
	}, nil)

	res, err := http.Post(srv.URL+"/v1/expand", "application/json", strings.NewReader(`{"url":"https://bit.ly/x"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	hres, err := http.Get(srv.URL + "/v1/history")
	require.NoError(t, err)
	defer hres.Body.Close()
	require.Equal(t, http.StatusOK, hres.StatusCode)
}

func TestServer_Preflight(t *testing.T) {
	_, srv := newTestServer(t, api.Options{CORSAllowOrigin: "https://dashboard.example"})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/expand", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, "https://dashboard.example", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_RequestTimeout(t *testing.T) {
	p, srv := newTestServer(t, api.Options{RequestTimeout: 20 * time.Millisecond})

	p.EXPECT().Run(gomock.Any(), "https://slow.example").DoAndReturn(
		func(ctx context.Context, _ string) (*domain.ExpansionResult, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		})

	res, err := http.Post(srv.URL+"/v1/expand", "application/json", strings.NewReader(`{"url":"https://slow.example"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

package controller_test

import (
	"linkexpander/pkg/controller"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPprof(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		path   string
	}{
		{"index", "/debug/pprof/", "/debug/pprof/"},
		{"cmdline", "/debug/pprof/", "/debug/pprof/cmdline"},
		{"named profile", "/debug/pprof/", "/debug/pprof/goroutine?debug=1"},
		{"prefix without slash", "/debug/pprof", "/debug/pprof/cmdline"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://pprof.local"+tc.path, nil)
			rec := httptest.NewRecorder()

			controller.Pprof(tc.prefix).ServeHTTP(rec, req)

			res := rec.Result()
			require.Equal(t, http.StatusOK, res.StatusCode)
			require.NotEmpty(t, res.Header.Get("Content-Type"))
		})
	}
}

func TestPprof_UnknownPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://pprof.local/elsewhere", nil)
	rec := httptest.NewRecorder()

	controller.Pprof("/debug/pprof/").ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Result().StatusCode)
}

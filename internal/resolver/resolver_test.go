package resolver_test

import (
	"context"
	"errors"
	"linkexpander/internal/resolver"
	"linkexpander/pkg/serrors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// newChain serves /0 -> /1 -> ... -> /hops, where /hops answers with final.
func newChain(t *testing.T, hops int, final int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for i := range hops {
		mux.HandleFunc("/"+itoa(i), func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodHead, r.Method)
			http.Redirect(w, r, "/"+itoa(i+1), http.StatusMovedPermanently)
		})
	}
	mux.HandleFunc("/"+itoa(hops), func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(final)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func itoa(i int) string {
	return string(rune('a' + i))
}

func TestResolve_FollowsChain(t *testing.T) {
	srv := newChain(t, 3, http.StatusOK)
	r := resolver.New(srv.Client(), resolver.Options{})

	got, err := r.Resolve(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/d", got)
}

func TestResolve_NoRedirectIsIdentity(t *testing.T) {
	srv := newChain(t, 0, http.StatusOK)
	r := resolver.New(srv.Client(), resolver.Options{})

	got, err := r.Resolve(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/a", got)
}

func TestResolve_IgnoresFinalStatus(t *testing.T) {
	srv := newChain(t, 1, http.StatusNotFound)
	r := resolver.New(srv.Client(), resolver.Options{})

	got, err := r.Resolve(context.Background(), srv.URL+"/a")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/b", got)
}

func TestResolve_SendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "link-expander-test", r.Header.Get("User-Agent"))
	}))
	t.Cleanup(srv.Close)

	r := resolver.New(srv.Client(), resolver.Options{UserAgent: "link-expander-test"})
	_, err := r.Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
}

func TestResolve_TooManyRedirects(t *testing.T) {
	srv := newChain(t, 3, http.StatusOK)
	r := resolver.New(srv.Client(), resolver.Options{MaxRedirects: 2})

	_, err := r.Resolve(context.Background(), srv.URL+"/a")
	require.ErrorIs(t, err, serrors.ErrResolutionFailed)
	require.ErrorIs(t, err, resolver.ErrTooManyRedirects)
}

func TestResolve_DoesNotMutateSharedClient(t *testing.T) {
	shared := &http.Client{}
	_ = resolver.New(shared, resolver.Options{MaxRedirects: 1})
	require.Nil(t, shared.CheckRedirect)
}

func TestResolve_Failures(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		input string
		rt    rtFunc
	}{
		{
			name:  "unparsable URL",
			input: "http://[::1",
			rt: func(*http.Request) (*http.Response, error) {
				t.Fatal("no request expected")

				return nil, nil
			},
		},
		{
			name:  "transport error",
			input: "https://sho.rt/x",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, boom
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := resolver.New(&http.Client{Transport: tc.rt}, resolver.Options{})
			_, err := r.Resolve(context.Background(), tc.input)
			require.ErrorIs(t, err, serrors.ErrResolutionFailed)
		})
	}
}

func TestResolve_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	r := resolver.New(srv.Client(), resolver.Options{Timeout: 50 * time.Millisecond})
	_, err := r.Resolve(context.Background(), srv.URL)
	require.ErrorIs(t, err, serrors.ErrResolutionFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

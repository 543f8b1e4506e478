package v1handler_test

import (
	"context"
	"errors"
	"linkexpander/internal/api/handler/v1handler"
	"linkexpander/internal/history"
	"linkexpander/pkg/domain"
	"net/http"
	"net/http/httptest"
	"testing"

	mockpipeline "linkexpander/internal/pipeline/mock"
	mockstorage "linkexpander/pkg/storage/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestListHistory_Empty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestListHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.history.Append(ctx, domain.HistoryEntry{
		Original: "https://t.co/1", Expanded: "https://one.example/", Date: "2024-03-08", Safe: true,
	}))
	require.NoError(t, env.history.Append(ctx, domain.HistoryEntry{
		Original: "https://t.co/2", Expanded: "https://two.example/", Date: "2024-03-09", Safe: false,
	}))

	rec := env.do(http.MethodGet, "/v1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[
		{"original":"https://t.co/2","expanded":"https://two.example/","date":"2024-03-09","safe":false},
		{"original":"https://t.co/1","expanded":"https://one.example/","date":"2024-03-08","safe":true}
	]`, rec.Body.String())
}

func TestClearHistory(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.history.Append(context.Background(), domain.HistoryEntry{Original: "a", Expanded: "b"}))

	rec := env.do(http.MethodDelete, "/v1/history", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Empty(t, env.history.List())
}

func TestHistory_StorageFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockstorage.NewMockBlobStorage(ctrl)
	p := mockpipeline.NewMockPipeline(ctrl)
	boom := errors.New("connection refused")

	store.EXPECT().Get(gomock.Any(), history.DefaultKey).Return(nil, nil)
	c, err := history.New(context.Background(), store, history.Options{})
	require.NoError(t, err)

	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{Pipeline: p, History: c}).Routes(mux)

	// a failed history write does not fail the expansion
	p.EXPECT().Run(gomock.Any(), "https://bit.ly/x").Return(&domain.ExpansionResult{
		OriginalURL: "https://bit.ly/x", ExpandedURL: "https://example.com/", TrustScore: 100, IsSafe: true,
	}, nil)
	store.EXPECT().Set(gomock.Any(), history.DefaultKey, gomock.Any()).Return(boom)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/expand", stringsReader(`{"url":"https://bit.ly/x"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	store.EXPECT().Delete(gomock.Any(), history.DefaultKey).Return(boom)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/history", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

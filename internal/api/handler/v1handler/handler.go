// Package v1handler implements the /v1 HTTP API: URL expansion and the
// history of past expansions.
package v1handler

import (
	"context"
	"errors"
	"linkexpander/internal/pipeline"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/logger"
	"linkexpander/pkg/serrors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Messages returned to clients. Failure details stay in the logs.
const (
	MsgURLRequired    = "URL is required"
	MsgExpandFailed   = "Failed to expand URL"
	MsgInternalFailed = "Internal server error"
)

// History is the subset of history.Cache used by the handlers.
type History interface {
	Append(ctx context.Context, entry domain.HistoryEntry) error
	List() []domain.HistoryEntry
	Clear(ctx context.Context) error
}

// Deps are the services the handlers delegate to.
type Deps struct {
	Pipeline pipeline.Pipeline
	History  History
	// Now returns the local time used to date history entries. Defaults to time.Now.
	Now func() time.Time
}

// Handler serves the /v1 routes.
type Handler struct {
	deps Deps
}

// New returns a Handler for deps.
func New(deps Deps) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Handler{deps: deps}
}

// Routes registers the /v1 endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/expand", h.ExpandURL)
	mux.HandleFunc("GET /v1/history", h.ListHistory)
	mux.HandleFunc("DELETE /v1/history", h.ClearHistory)
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

// NewError maps err to the response sent to the client and logs it. Only
// invalid input is reported as such; any other failure gets a generic message.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	switch {
	case errors.Is(err, serrors.ErrInvalidInput):
		logger.Debug(ctx, "invalid request", zap.Error(err))

		return &ErrorStatusCode{
			StatusCode: http.StatusBadRequest,
			Response:   ErrorResponse{Error: MsgURLRequired},
		}
	case errors.Is(err, serrors.ErrPipelineFailed):
		logger.Error(ctx, "could not expand URL", zap.Error(err))

		return &ErrorStatusCode{
			StatusCode: http.StatusInternalServerError,
			Response:   ErrorResponse{Error: MsgExpandFailed},
		}
	default:
		logger.Error(ctx, err.Error())

		return &ErrorStatusCode{
			StatusCode: http.StatusInternalServerError,
			Response:   ErrorResponse{Error: MsgInternalFailed},
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	encodeResponse(w, res.StatusCode, &res.Response)
}

package v1handler

import (
	"errors"
	"linkexpander/pkg/domain"
	"linkexpander/pkg/logger"
	"linkexpander/pkg/serrors"
	"net/http"

	"go.uber.org/zap"
)

// ExpandURL handles POST /v1/expand. A body that cannot be decoded is treated
// like a missing URL. A successful result is appended to the history; failing
// to do so is logged and does not change the response.
func (h *Handler) ExpandURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExpandRequest
	if err := decodeRequest(r, &req); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrInvalidInput, err, "could not decode request"))

		return
	}

	res, err := h.deps.Pipeline.Run(ctx, req.URL)
	if err != nil {
		if !errors.Is(err, serrors.ErrInvalidInput) && !errors.Is(err, serrors.ErrPipelineFailed) {
			err = serrors.Wrap(serrors.ErrPipelineFailed, err, "could not expand URL")
		}
		h.writeError(w, r, err)

		return
	}

	if h.deps.History != nil {
		if err := h.deps.History.Append(ctx, domain.NewHistoryEntry(res, h.deps.Now())); err != nil {
			logger.Warn(ctx, "could not append history entry", zap.Error(err))
		}
	}

	encodeResponse(w, http.StatusOK, (*ExpansionResult)(res))
}

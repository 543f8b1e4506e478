package v1handler

import (
	"net/http"
)

// ListHistory handles GET /v1/history, newest entry first.
func (h *Handler) ListHistory(w http.ResponseWriter, _ *http.Request) {
	encodeResponse(w, http.StatusOK, HistoryList(h.deps.History.List()))
}

// ClearHistory handles DELETE /v1/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.History.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

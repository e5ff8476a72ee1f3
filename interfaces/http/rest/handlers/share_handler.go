package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/common"
)

// ShareHandler serves the anonymous public batch view.
type ShareHandler struct {
	shares *services.ShareService
	logger *zap.Logger
}

// NewShareHandler creates a new share handler.
func NewShareHandler(shares *services.ShareService, logger *zap.Logger) *ShareHandler {
	return &ShareHandler{
		shares: shares,
		logger: logger,
	}
}

// GetSharedBatch handles GET /share/{batchID}. No auth; only batches flagged
// public are visible.
func (h *ShareHandler) GetSharedBatch(w http.ResponseWriter, r *http.Request) {
	view, err := h.shares.GetSharedBatch(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

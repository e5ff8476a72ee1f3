package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/auth"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/common"
)

// ExportHandler serves CSV downloads of a user's data.
type ExportHandler struct {
	exports *services.ExportService
	logger  *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exports *services.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exports: exports,
		logger:  logger,
	}
}

// ExportBatches handles GET /export/batches.csv
func (h *ExportHandler) ExportBatches(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	data, err := h.exports.ExportBatchesCSV(r.Context(), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="batches.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

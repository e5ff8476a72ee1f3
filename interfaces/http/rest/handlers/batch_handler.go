// Package handlers contains the HTTP request handlers. Handlers decode and
// validate requests, delegate to the application services and translate
// errors to API responses.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/auth"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/common"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/utils"
)

// BatchHandler handles batch-related HTTP requests.
type BatchHandler struct {
	batches *services.BatchService
	logger  *zap.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(batches *services.BatchService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{
		batches: batches,
		logger:  logger,
	}
}

// CreateBatch handles POST /batches
func (h *BatchHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req services.CreateBatchInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	batch, err := h.batches.CreateBatch(r.Context(), userCtx.UserID, req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, batch)
}

// GetBatch handles GET /batches/{batchID}
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	batch, err := h.batches.GetBatch(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, batch)
}

// ListBatches handles GET /batches
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	filter := persistence.BatchFilter{
		Stage:  entities.Stage(r.URL.Query().Get("stage")),
		Status: entities.Status(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || limit < 1 {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		filter.Limit = int32(limit)
	}
	if filter.Stage != "" && !filter.Stage.Valid() {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown stage: "+string(filter.Stage))
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown status: "+string(filter.Status))
		return
	}

	batches, err := h.batches.ListBatches(r.Context(), userCtx.UserID, filter)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"batches": batches,
		"count":   len(batches),
	})
}

// UpdateBatch handles PATCH /batches/{batchID}
func (h *BatchHandler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req services.UpdateBatchInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	batch, err := h.batches.UpdateBatch(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, batch)
}

// ArchiveBatch handles DELETE /batches/{batchID}
func (h *BatchHandler) ArchiveBatch(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.batches.ArchiveBatch(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": string(entities.StatusArchived)})
}

// LogEvent handles POST /batches/{batchID}/events
func (h *BatchHandler) LogEvent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req services.LogEventInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	event, err := h.batches.LogEvent(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /batches/{batchID}/events
func (h *BatchHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var limit int32
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = int32(parsed)
	}

	events, err := h.batches.ListEvents(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"), limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// PresignPhotoRequest asks for a direct-upload URL.
type PresignPhotoRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp"`
}

// PresignPhotoUpload handles POST /batches/{batchID}/photos
func (h *BatchHandler) PresignPhotoUpload(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req PresignPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	upload, err := h.batches.PresignPhotoUpload(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"), req.ContentType)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, upload)
}

// PresignPhotoDownload handles GET /batches/{batchID}/photos?key=...
func (h *BatchHandler) PresignPhotoDownload(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "key query parameter is required")
		return
	}

	url, err := h.batches.PresignPhotoDownload(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"), key)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"downloadUrl": url})
}

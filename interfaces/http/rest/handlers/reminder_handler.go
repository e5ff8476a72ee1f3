package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/auth"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/common"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/utils"
)

// ReminderHandler handles reminder-related HTTP requests.
type ReminderHandler struct {
	reminders *services.ReminderService
	logger    *zap.Logger
}

// NewReminderHandler creates a new reminder handler.
func NewReminderHandler(reminders *services.ReminderService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminders: reminders,
		logger:    logger,
	}
}

// Suggest handles GET /batches/{batchID}/reminders/suggest
func (h *ReminderHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	suggestions, err := h.reminders.Suggest(r.Context(), userCtx.UserID, chi.URLParam(r, "batchID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// Confirm handles POST /reminders
func (h *ReminderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req services.ConfirmReminderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	reminder, err := h.reminders.Confirm(r.Context(), userCtx.UserID, req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, reminder)
}

// List handles GET /reminders
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	reminders, err := h.reminders.List(r.Context(), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

// Cancel handles DELETE /reminders/{reminderID}
func (h *ReminderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	reminder, err := h.reminders.Cancel(r.Context(), userCtx.UserID, chi.URLParam(r, "reminderID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, reminder)
}

// MarkSent handles POST /reminders/{reminderID}/sent
func (h *ReminderHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	reminder, err := h.reminders.MarkSent(r.Context(), userCtx.UserID, chi.URLParam(r, "reminderID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, reminder)
}

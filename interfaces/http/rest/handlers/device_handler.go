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

// DeviceHandler handles push-device registration requests.
type DeviceHandler struct {
	devices *services.DeviceService
	logger  *zap.Logger
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(devices *services.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		devices: devices,
		logger:  logger,
	}
}

// Register handles PUT /devices
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req services.RegisterDeviceInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	device, err := h.devices.Register(r.Context(), userCtx.UserID, req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, device)
}

// List handles GET /devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	devices, err := h.devices.List(r.Context(), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"count":   len(devices),
	})
}

// Unregister handles DELETE /devices/{deviceID}
func (h *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.devices.Unregister(r.Context(), userCtx.UserID, chi.URLParam(r, "deviceID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

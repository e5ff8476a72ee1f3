package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/auth"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/common"
)

// UserHandler serves the caller's identity record.
type UserHandler struct {
	repo   *persistence.Repository
	logger *zap.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(repo *persistence.Repository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		repo:   repo,
		logger: logger,
	}
}

// Me handles GET /me. The identity record is created lazily on first request.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	user, err := h.repo.GetOrCreateUser(r.Context(), userCtx.UserID, userCtx.Email)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, user)
}

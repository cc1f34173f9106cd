package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vnestate/chatbot-platform/internal/auth"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/store"
	"github.com/vnestate/chatbot-platform/pkg/logger"
)

// AdminHandler handles admin-only user management endpoints. Routes using
// it must be wrapped with middleware.RequireRole("admin").
type AdminHandler struct {
	service *auth.Service
	logger  *logger.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc *auth.Service, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  log,
	}
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

// UpdateUser handles PUT /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, user)
}

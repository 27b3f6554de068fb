package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medbook/auth-service/internal/auth"
	apierrors "github.com/medbook/auth-service/internal/errors"
	"github.com/medbook/auth-service/internal/service"
)

// AdminUserByID — GET /admin/users/{id}.
// Проверка прав строго после проверки аутентификации: аноним получает 401,
// аутентифицированный пациент — 403.
func (h *Handlers) AdminUserByID(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(auth.FromContext(r.Context())); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, &service.ValidationError{Field: "id", Message: "invalid user id"})
		return
	}

	user, err := h.Service.UserByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(user))
}

package handlers

import (
	"net/http"

	"github.com/medbook/auth-service/internal/auth"
	apierrors "github.com/medbook/auth-service/internal/errors"
	"github.com/medbook/auth-service/internal/transport/http/cookies"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser — POST /auth/register.
// При успехе обе cookie (access + refresh) устанавливаются сразу:
// регистрация одновременно означает вход.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidBody())
		return
	}

	pair, user, err := h.Service.RegisterUser(r.Context(), in.Email, in.Name, in.Phone, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cookies.SetPair(w, h.Cookies, pair)
	writeJSON(w, http.StatusCreated, toUserView(user))
}

// LoginUser — POST /auth/login.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidBody())
		return
	}

	pair, user, err := h.Service.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cookies.SetPair(w, h.Cookies, pair)
	writeJSON(w, http.StatusOK, toUserView(user))
}

// RefreshToken — POST /auth/refresh.
// Refresh-токен принимается только из cookie; выпускается новый access-токен,
// refresh-токен остаётся прежним и не перевыпускается.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	_, refreshToken := cookies.Read(r)
	if refreshToken == "" {
		apierrors.WriteError(w, r, auth.ErrUnauthenticated)
		return
	}

	access, user, err := h.Service.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cookies.SetAccess(w, h.Cookies, access)
	writeJSON(w, http.StatusOK, toUserView(user))
}

// Logout — POST /auth/logout.
// Идемпотентен: повторный выход и выход без cookie отвечают так же, как первый.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken, refreshToken := cookies.Read(r)

	if err := h.Service.Logout(r.Context(), accessToken, refreshToken); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cookies.Clear(w, h.Cookies)
	w.WriteHeader(http.StatusNoContent)
}

// Me — GET /auth/me. Возвращает личность текущего запроса.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.RequireAuthenticated(auth.FromContext(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdentityView(identity))
}

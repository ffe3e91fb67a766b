package http

import (
	"errors"
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister godoc
//
//	@Summary		Direct Registration
//	@Description	Create a member account with email and password. The new member is signed in immediately.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration details"
//	@Success		201		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.AuthService.Register(r.Context(), req.Email, req.Password, req.names())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view := newUserResponse(user)
	httpx.WriteJSON(w, http.StatusCreated, TokenResponse{Token: token, User: &view})
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Exchange email and password (plus a TOTP code when MFA is enabled) for a bearer token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		// On the login surface a wrong TOTP code is an authentication
		// failure, not a malformed request.
		if errors.Is(err, service.ErrInvalidTOTP) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_totp", "invalid totp code")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	view := newUserResponse(user)
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{Token: token, User: &view})
}

// HandleReset godoc
//
//	@Summary		Password Reset
//	@Description	Overwrite the password for an existing account. No token is issued; log in afterwards.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	ResetPasswordRequest	true	"Email and new password"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Router			/v1/auth/reset [post].
func (h *AuthHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidate godoc
//
//	@Summary		Token Validation
//	@Description	Report whether a bearer token is currently acceptable. Always 200; the verdict is in the body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TokenRequest	true	"Token to check"
//	@Success		200		{object}	ValidateResponse
//	@Router			/v1/auth/validate [post].
func (h *AuthHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, ok := h.AuthService.ValidateToken(req.Token)
	httpx.WriteJSON(w, http.StatusOK, ValidateResponse{Valid: ok})
}

// HandleRefresh godoc
//
//	@Summary		Token Refresh
//	@Description	Exchange a signature-valid token for a fresh one. Tokens lapsed beyond the refresh leeway are refused.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TokenRequest	true	"Token to refresh"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.AuthService.RefreshToken(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

// decodeJSON parses the body into dst and runs its validation rules. It
// writes the 400 itself so handlers can just return on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{ Validate() error }) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	if err := dst.Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

// writeServiceError maps service sentinels onto the HTTP surface. Anything
// unmapped is a 500 and gets logged; mapped failures were already logged at
// the service layer.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest, "email_taken", "email is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrMFARequired):
		httpx.WriteError(w, http.StatusUnauthorized, "mfa_required", "a totp code is required")
	case errors.Is(err, service.ErrInvalidTOTP):
		// 400 on the MFA management endpoints; login maps this to 401 itself.
		httpx.WriteError(w, http.StatusBadRequest, "invalid_totp", "invalid totp code")
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token is not acceptable")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "user not found")

	case errors.Is(err, service.ErrInviteNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "invitation not found")
	case errors.Is(err, service.ErrInviteUsed):
		httpx.WriteError(w, http.StatusGone, "already_used", "invitation has already been used")
	case errors.Is(err, service.ErrInviteExpired):
		httpx.WriteError(w, http.StatusGone, "expired", "invitation has expired")

	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		httpx.WriteError(w, http.StatusConflict, "mfa_already_enabled", "mfa is already enabled")
	case errors.Is(err, service.ErrMFANotEnrolled):
		httpx.WriteError(w, http.StatusBadRequest, "mfa_not_enrolled", "mfa enrollment has not started")

	case errors.Is(err, service.ErrUnitNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "unit not found")
	case errors.Is(err, service.ErrUnitNameTaken):
		httpx.WriteError(w, http.StatusBadRequest, "name_taken", "unit name is already taken")
	case errors.Is(err, service.ErrNotMember):
		httpx.WriteError(w, http.StatusNotFound, "not_member", "not a member of this unit")

	case errors.Is(err, service.ErrMentorshipNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "mentorship not found")
	case errors.Is(err, service.ErrMenteeHasMentor):
		httpx.WriteError(w, http.StatusBadRequest, "mentee_has_mentor", "mentee already has an open mentorship")
	case errors.Is(err, service.ErrSelfMentorship):
		httpx.WriteError(w, http.StatusBadRequest, "self_mentorship", "cannot mentor yourself")
	case errors.Is(err, service.ErrNotParticipant):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "only the mentor or mentee may do this")

	case errors.Is(err, service.ErrUploadNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "upload not found")
	case errors.Is(err, service.ErrUploadTooLarge):
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds the size limit")

	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "something went wrong")
	}
}

// callerID pulls the authenticated member id injected by AuthnMiddleware.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := httpx.UserIDFromContext(r.Context())
	if !ok || id == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return "", false
	}
	return id, true
}

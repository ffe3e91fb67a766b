package http

import (
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll godoc
//
//	@Summary		Start TOTP Enrollment
//	@Description	Generate a TOTP secret and otpauth URL. MFA stays off until the first code is verified via activate.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	MFAEnrollResponse
//	@Failure		409	{object}	httpx.ErrorResponse	"already enabled"
//	@Security		BearerAuth
//	@Router			/v1/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	enrollment, err := h.MFAService.Enroll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, MFAEnrollResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}

// HandleActivate godoc
//
//	@Summary		Activate TOTP
//	@Description	Verify the first authenticator code and turn MFA on.
//	@Tags			MFA
//	@Accept			json
//	@Param			request	body	MFACodeRequest	true	"Current TOTP code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mfa/activate [post].
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req MFACodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.Activate(r.Context(), userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable godoc
//
//	@Summary		Disable MFA
//	@Description	Turn MFA off after verifying a current authenticator code.
//	@Tags			MFA
//	@Accept			json
//	@Param			request	body	MFACodeRequest	true	"Current TOTP code"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req MFACodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.MFAService.Disable(r.Context(), userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

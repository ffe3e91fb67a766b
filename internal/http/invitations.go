package http

import (
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type InvitationsHandler struct {
	InviteService *service.InviteService
	AuthService   *service.AuthService
}

// HandleCreate godoc
//
//	@Summary		Create Invitation
//	@Description	Mint a single-use magic-link invitation for an email address. Re-inviting an address with an active invitation returns the original link with 200 instead of 201.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateInvitationRequest	true	"Address to invite"
//	@Success		201		{object}	InvitationResponse
//	@Success		200		{object}	InvitationResponse	"existing active invitation"
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	inviterID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, created, err := h.InviteService.Create(r.Context(), inviterID, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	httpx.WriteJSON(w, code, InvitationResponse{
		Token:     inv.Token,
		Email:     inv.Email,
		ExpiresAt: inv.ExpiresAt,
	})
}

// HandleInfo godoc
//
//	@Summary		Invitation Landing Info
//	@Description	Resolve a magic-link token to the invited address and inviter, for the public landing page.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		200		{object}	InvitationInfoResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		410		{object}	httpx.ErrorResponse	"used or expired"
//	@Router			/v1/invitations/{token} [get].
func (h *InvitationsHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	inv, inviter, err := h.InviteService.Info(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, InvitationInfoResponse{
		Email:     inv.Email,
		ExpiresAt: inv.ExpiresAt,
		InvitedBy: InvitedBy{ID: inviter.ID, DisplayName: inviter.DisplayName},
	})
}

// HandleComplete godoc
//
//	@Summary		Complete Invitation
//	@Description	Redeem a magic link: set a password, optionally profile names, and receive a bearer token. Each link works exactly once.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CompleteInvitationRequest	true	"Token, password and names"
//	@Success		201		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		410		{object}	httpx.ErrorResponse	"used or expired"
//	@Router			/v1/invitations/complete [post].
func (h *InvitationsHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req CompleteInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.InviteService.Complete(r.Context(), req.Token, req.Password, req.names())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Auto-login: completing the invitation is also the first sign-in.
	token, err := h.AuthService.IssueFor(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view := newUserResponse(user)
	httpx.WriteJSON(w, http.StatusCreated, TokenResponse{Token: token, User: &view})
}

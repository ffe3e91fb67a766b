package http

import (
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type MentorshipsHandler struct {
	MentorshipService *service.MentorshipService
}

// HandleStart godoc
//
//	@Summary		Start a Mentorship
//	@Description	Open a pairing with the caller as mentor. A mentee can hold only one open pairing at a time.
//	@Tags			Mentorships
//	@Accept			json
//	@Produce		json
//	@Param			request	body		StartMentorshipRequest	true	"Mentee id"
//	@Success		201		{object}	MentorshipResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse	"mentee unknown"
//	@Security		BearerAuth
//	@Router			/v1/mentorships [post].
func (h *MentorshipsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	mentorID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req StartMentorshipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.MentorshipService.Start(r.Context(), mentorID, req.MenteeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newMentorshipResponse(m))
}

// HandleList godoc
//
//	@Summary		My Mentorships
//	@Description	List the caller's pairings, as mentor and as mentee, newest first.
//	@Tags			Mentorships
//	@Produce		json
//	@Success		200	{array}		MentorshipResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mentorships [get].
func (h *MentorshipsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ms, err := h.MentorshipService.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]MentorshipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, newMentorshipResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleEnd godoc
//
//	@Summary		End a Mentorship
//	@Description	Close an open pairing. Only its mentor or mentee may do this.
//	@Tags			Mentorships
//	@Param			id	path	string	true	"Mentorship id"
//	@Success		204
//	@Failure		403	{object}	httpx.ErrorResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/mentorships/{id}/end [post].
func (h *MentorshipsHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.MentorshipService.End(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

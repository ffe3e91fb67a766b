package http

import (
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleList godoc
//
//	@Summary		Member Directory
//	@Description	List all members ordered by display name.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}		UserResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponses(users))
}

// HandleGet godoc
//
//	@Summary		Member Profile
//	@Description	Fetch a single member by id.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"Member id"
//	@Success		200	{object}	UserResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

// HandleMe godoc
//
//	@Summary		Own Profile
//	@Description	Fetch the authenticated member's own record.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

// HandleUpdateMe godoc
//
//	@Summary		Update Own Profile
//	@Description	Replace the caller's profile names; the display name is re-derived (preferred, then spiritual, then worldly).
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UpdateProfileRequest	true	"New names"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/me [patch].
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateNames(r.Context(), userID, req.names())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

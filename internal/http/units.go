package http

import (
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type UnitsHandler struct {
	UnitService *service.UnitService
}

// HandleCreate godoc
//
//	@Summary		Found a Unit
//	@Description	Create a local group with the caller as leader and first member.
//	@Tags			Units
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUnitRequest	true	"Name and description"
//	@Success		201		{object}	UnitResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"name taken or invalid"
//	@Security		BearerAuth
//	@Router			/v1/units [post].
func (h *UnitsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	leaderID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateUnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	unit, err := h.UnitService.Create(r.Context(), leaderID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newUnitResponse(unit))
}

// HandleList godoc
//
//	@Summary		List Units
//	@Tags			Units
//	@Produce		json
//	@Success		200	{array}		UnitResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/units [get].
func (h *UnitsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	units, err := h.UnitService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, newUnitResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Unit Detail
//	@Description	Fetch a unit with its current member list.
//	@Tags			Units
//	@Produce		json
//	@Param			id	path		string	true	"Unit id"
//	@Success		200	{object}	UnitDetailResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/units/{id} [get].
func (h *UnitsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	unit, members, err := h.UnitService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, UnitDetailResponse{
		UnitResponse: newUnitResponse(unit),
		Members:      newUserResponses(members),
	})
}

// HandleJoin godoc
//
//	@Summary		Join a Unit
//	@Description	Add the caller to the unit's member list. Joining twice is a no-op.
//	@Tags			Units
//	@Param			id	path	string	true	"Unit id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/units/{id}/join [post].
func (h *UnitsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.UnitService.Join(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLeave godoc
//
//	@Summary		Leave a Unit
//	@Tags			Units
//	@Param			id	path	string	true	"Unit id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorResponse	"unit unknown or caller not a member"
//	@Security		BearerAuth
//	@Router			/v1/units/{id}/members/me [delete].
func (h *UnitsHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.UnitService.Leave(r.Context(), r.PathValue("id"), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

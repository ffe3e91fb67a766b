package http

import (
	"net/http"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/pkg/httpx"
)

type UploadsHandler struct {
	UploadService *service.UploadService
}

// HandleUpload godoc
//
//	@Summary		Upload a File
//	@Description	Accept a multipart upload (field "file"), store the bytes and return the metadata with a first signed download link.
//	@Tags			Uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		413		{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/uploads [post].
func (h *UploadsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", `multipart field "file" is required`)
		return
	}
	defer file.Close()

	up, err := h.UploadService.Save(
		r.Context(),
		ownerID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newUploadResponse(up))
}

// HandleList godoc
//
//	@Summary		My Uploads
//	@Tags			Uploads
//	@Produce		json
//	@Success		200	{array}		UploadResponse
//	@Failure		401	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/uploads [get].
func (h *UploadsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	ups, err := h.UploadService.ListForOwner(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]UploadResponse, 0, len(ups))
	for _, u := range ups {
		out = append(out, newUploadResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleLink godoc
//
//	@Summary		Signed Download Link
//	@Description	Resolve an upload to a time-limited signed URL. The link works without authentication until it expires.
//	@Tags			Uploads
//	@Produce		json
//	@Param			id	path		string	true	"Upload id"
//	@Success		200	{object}	UploadLinkResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/uploads/{id}/url [get].
func (h *UploadsHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	url, expiresAt, err := h.UploadService.SignedLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, UploadLinkResponse{URL: url, ExpiresAt: expiresAt})
}

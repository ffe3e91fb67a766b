package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/opensangha/memberhub/pkg/blob"
	"github.com/opensangha/memberhub/pkg/httpx"
	"github.com/opensangha/memberhub/pkg/slogx"
)

type FilesHandler struct {
	Blobs blob.Store
}

// ServeHTTP godoc
//
//	@Summary		Signed File Download
//	@Description	Stream the bytes behind a signed link. The exp and sig query parameters come from the uploads endpoint; tampered or lapsed links are refused.
//	@Tags			Uploads
//	@Produce		octet-stream
//	@Param			key	path		string	true	"Blob key"
//	@Param			exp	query		string	true	"Expiry (unix seconds)"
//	@Param			sig	query		string	true	"HMAC signature"
//	@Success		200	{file}		binary
//	@Failure		403	{object}	httpx.ErrorResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Router			/v1/files/{key} [get].
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	exp := r.URL.Query().Get("exp")
	sig := r.URL.Query().Get("sig")

	if err := h.Blobs.VerifyPath(key, exp, sig, time.Now()); err != nil {
		if errors.Is(err, blob.ErrLinkExpired) {
			httpx.WriteError(w, http.StatusForbidden, "link_expired", "signed link has expired")
			return
		}
		httpx.WriteError(w, http.StatusForbidden, "bad_signature", "signed link is not valid")
		return
	}

	rc, err := h.Blobs.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "file not found")
			return
		}
		slogx.FromContext(r.Context()).Error("failed to open blob", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "something went wrong")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = io.Copy(w, rc)
}

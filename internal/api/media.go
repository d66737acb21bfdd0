package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ironkart/ironkart/internal/media"
)

// uploadImage accepts a multipart form with an "image" part and returns its
// public URL.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := h.media.Save(r.Context(), media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNotImage):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, media.ErrTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			h.serverError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	if err := decodeJSON(r, &req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.media.Remove(r.Context(), req.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

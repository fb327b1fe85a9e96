package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/AnshRaj112/survey-backend/internal/services"
)

const (
	maxUploadSize = 10 << 20
	uploadTimeout = 30 * time.Second
)

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadImage stores the multipart "file" field in Cloudinary. Clients keep
// the returned URL as a profileImg.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		h.writeError(w, r, errs.NewServiceUnavailableError("Image upload is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.writeError(w, r, errs.NewBadRequestError("Failed to parse form: file must be at most 10MB", nil))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, errs.NewBadRequestError("No file provided", []errs.FieldError{
			{Field: "file", Error: "is required"},
		}))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		h.writeError(w, r, errs.NewBadRequestError("File must be at most 10MB", nil))
		return
	}

	folder := strings.TrimSpace(r.URL.Query().Get("folder"))
	if folder == "" {
		folder = services.DefaultUploadFolder
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	url, err := h.uploader.UploadImage(ctx, file, folder)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
	})
}

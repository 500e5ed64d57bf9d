package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/reclaim/internal/exchange"
	"github.com/erazemk/reclaim/internal/imaging"
	"github.com/erazemk/reclaim/internal/store"
)

// ImagesHandler stores item and proof photos and serves them to viewers the
// exchange allows.
type ImagesHandler struct {
	DB       *sql.DB
	Exchange *exchange.Coordinator
	MaxBytes int64
}

type uploadResponse struct {
	Ref    string `json:"ref"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Upload handles POST /api/images.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrExtension), errors.Is(err, imaging.ErrUnsupported):
			jsonError(w, http.StatusBadRequest, err.Error())
		default:
			jsonError(w, http.StatusBadRequest, "could not read image")
		}
		return
	}

	ref, err := store.SaveImage(r.Context(), h.DB, result.Data, result.MIME, actorID(r))
	if err != nil {
		slog.Error("saving image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusCreated, uploadResponse{Ref: ref, Width: result.Width, Height: result.Height})
}

// Get handles GET /api/images/{ref}. Images the caller may not see are
// reported as missing.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")

	allowed, err := h.Exchange.CanViewImage(r.Context(), actorID(r), ref)
	if err != nil {
		workflowError(w, r, err)
		return
	}
	if !allowed {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	data, mime, err := store.GetImage(r.Context(), h.DB, ref)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

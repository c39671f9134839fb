package httpapi

import (
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	httpinfra "creatora-api/internal/infra/http"
)

const multipartOverhead = 64 << 10

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.images.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpinfra.WriteError(w, http.StatusBadRequest, "Image file is too large")
			return
		}
		httpinfra.WriteError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	img, err := s.images.Upload(r.Context(), file, header.Size, header.Header.Get("Content-Type"), "uploads")
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusCreated, img)
}

func (s *Server) handleImageDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.images.Delete(r.Context(), chi.URLParam(r, "publicId")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

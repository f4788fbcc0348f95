package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"stayhub/internal/service"
)

const sniffLen = 512

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	page, err := s.svc.Admin.List(r.Context(), keyword, pageRequest(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": newPage(page), "keyword": keyword})
}

func (s *Server) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	listing, err := s.svc.Admin.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	in, image, cleanup, ok := s.listingForm(w, r)
	if !ok {
		return
	}
	defer cleanup()

	listing, err := s.svc.Admin.Create(r.Context(), in, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	in, image, cleanup, ok := s.listingForm(w, r)
	if !ok {
		return
	}
	defer cleanup()

	listing, err := s.svc.Admin.Update(r.Context(), id, in, image)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.svc.Admin.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listingForm reads a multipart listing form with an optional "image" file.
// Unparseable numbers are left at zero and rejected by validation.
func (s *Server) listingForm(w http.ResponseWriter, r *http.Request) (service.ListingInput, *service.Upload, func(), bool) {
	noop := func() {}
	maxBytes := int64(s.cfg.HTTP.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return service.ListingInput{}, nil, noop, false
	}

	price, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("price")), 10, 64)
	capacity, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("capacity")))
	in := service.ListingInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Capacity:    capacity,
		PostalCode:  r.FormValue("postal_code"),
		Address:     r.FormValue("address"),
		PhoneNumber: r.FormValue("phone_number"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, noop, true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return in, nil, noop, false
	}

	// trust the bytes, not the client's content type
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return in, nil, noop, false
	}
	head = head[:n]

	image := &service.Upload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(head),
		Body:        io.MultiReader(bytes.NewReader(head), file),
	}
	return in, image, func() { file.Close() }, true
}

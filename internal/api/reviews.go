package api

import (
	"net/http"

	"stayhub/internal/service"
)

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	page, err := s.svc.Reviews.List(r.Context(), id, pageRequest(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(page))
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in service.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	review, err := s.svc.Reviews.Create(r.Context(), userID(r.Context()), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in service.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	review, err := s.svc.Reviews.Update(r.Context(), userID(r.Context()), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.svc.Reviews.Delete(r.Context(), userID(r.Context()), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

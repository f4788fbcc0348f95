package api

import (
	"net/http"
	"strings"
)

func (s *Server) handleListFaqs(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))

	page, err := s.svc.Faqs.Search(r.Context(), keyword, pageRequest(r).Page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"faqs":    newPage(page),
		"keyword": keyword,
	})
}

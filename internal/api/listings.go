package api

import (
	"net/http"
	"strconv"
	"strings"

	"stayhub/internal/models"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.svc.Listings.Home(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ListingFilter{
		Keyword: strings.TrimSpace(q.Get("keyword")),
		Area:    strings.TrimSpace(q.Get("area")),
		Order:   q.Get("order"),
	}
	if raw := q.Get("price"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			writeError(w, http.StatusBadRequest, "price must be a non-negative integer")
			return
		}
		filter.MaxPrice = price
	}

	page, err := s.svc.Listings.Search(r.Context(), filter, pageRequest(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := map[string]any{
		"listings": newPage(page),
		"keyword":  filter.Keyword,
		"area":     filter.Area,
		"price":    filter.MaxPrice,
		"order":    orderOrDefault(filter.Order),
	}
	// set when a booking flow was sent back here
	if msg := q.Get("error"); msg != "" {
		resp["error"] = msg
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.svc.Listings.Detail(r.Context(), id, userID(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func orderOrDefault(order string) string {
	if order == models.OrderPriceAsc {
		return order
	}
	return models.OrderCreatedAtDesc
}

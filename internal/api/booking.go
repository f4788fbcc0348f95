package api

import (
	"errors"
	"net/http"
	"net/url"

	"stayhub/internal/models"
	"stayhub/internal/service"
)

const (
	msgListingNotFound = "The listing you were booking no longer exists."
	msgIntentExpired   = "Your reservation session has expired. Please enter your dates again."
)

type confirmResponse struct {
	Listing        *models.Listing `json:"listing"`
	CheckinDate    string          `json:"checkin_date"`
	CheckoutDate   string          `json:"checkout_date"`
	Nights         int             `json:"nights"`
	NumberOfPeople int             `json:"number_of_people"`
	Amount         int64           `json:"amount"`
	SessionID      string          `json:"sessionId"`
}

// handleBookingInput validates the booking form and stages the intent.
func (s *Server) handleBookingInput(w http.ResponseWriter, r *http.Request) {
	listingID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	in := service.BookingInput{
		CheckinDate:    r.PostForm.Get("checkinDate"),
		CheckoutDate:   r.PostForm.Get("checkoutDate"),
		NumberOfPeople: r.PostForm.Get("numberOfPeople"),
	}

	_, err := s.svc.Booking.SubmitBookingInput(r.Context(), sessionID(r.Context()), userID(r.Context()), listingID, in)
	var inputErr *service.InputError
	switch {
	case err == nil:
		http.Redirect(w, r, "/reservations/confirm", http.StatusSeeOther)
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          "validation failed",
			"errors":         inputErr.Fields,
			"listing":        inputErr.Listing,
			"previous_dates": inputErr.PreviousDates,
		})
	case errors.Is(err, service.ErrListingNotFound):
		redirectToListings(w, r, msgListingNotFound)
	default:
		s.writeServiceError(w, r, err)
	}
}

// handleConfirm opens a payment session for the staged intent.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	conf, err := s.svc.Booking.Confirm(r.Context(), sessionID(r.Context()), userID(r.Context()))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrIntentExpiredOrMissing):
		redirectToListings(w, r, msgIntentExpired)
		return
	case errors.Is(err, service.ErrListingNotFound):
		redirectToListings(w, r, msgListingNotFound)
		return
	default:
		s.writeServiceError(w, r, err)
		return
	}

	intent := conf.Intent
	writeJSON(w, http.StatusOK, confirmResponse{
		Listing:        conf.Listing,
		CheckinDate:    intent.CheckinDate.Format(models.DateLayout),
		CheckoutDate:   intent.CheckoutDate.Format(models.DateLayout),
		Nights:         intent.Nights(),
		NumberOfPeople: intent.NumberOfPeople,
		Amount:         intent.Amount,
		SessionID:      conf.SessionID,
	})
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Booking.ListReservations(r.Context(), userID(r.Context()), pageRequest(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(page))
}

func redirectToListings(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/listings?error="+url.QueryEscape(msg), http.StatusSeeOther)
}

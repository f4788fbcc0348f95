package models

import (
	"strconv"
	"time"
)

// BookingIntent is an unconfirmed reservation request waiting for payment.
// It lives only in session-scoped storage.
type BookingIntent struct {
	SessionID      string    `json:"session_id"`
	UserID         int64     `json:"user_id"`
	ListingID      int64     `json:"listing_id"`
	CheckinDate    time.Time `json:"checkin_date"`
	CheckoutDate   time.Time `json:"checkout_date"`
	NumberOfPeople int       `json:"number_of_people"`
	Amount         int64     `json:"amount"`
	StagedAt       time.Time `json:"staged_at"`
}

// Nights returns the number of whole days between check-in and check-out.
func (i *BookingIntent) Nights() int {
	return DaysBetween(i.CheckinDate, i.CheckoutDate)
}

// Metadata keys carried by a checkout session.
const (
	MetaListingID      = "listingId"
	MetaUserID         = "userId"
	MetaCheckinDate    = "checkinDate"
	MetaCheckoutDate   = "checkoutDate"
	MetaNumberOfPeople = "numberOfPeople"
	MetaAmount         = "amount"
)

// Metadata renders the intent as the untyped string bag sent to the payment provider.
func (i *BookingIntent) Metadata() map[string]string {
	return map[string]string{
		MetaListingID:      strconv.FormatInt(i.ListingID, 10),
		MetaUserID:         strconv.FormatInt(i.UserID, 10),
		MetaCheckinDate:    i.CheckinDate.Format(DateLayout),
		MetaCheckoutDate:   i.CheckoutDate.Format(DateLayout),
		MetaNumberOfPeople: strconv.Itoa(i.NumberOfPeople),
		MetaAmount:         strconv.FormatInt(i.Amount, 10),
	}
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
func DaysBetween(a, b time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((DateOnly(b).Unix() - DateOnly(a).Unix()) / secondsPerDay)
}

// DateOnly drops the clock part and pins the date to UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a yyyy-MM-dd date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

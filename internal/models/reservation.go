package models

import "time"

type Reservation struct {
	ID                int64     `json:"id"`
	ListingID         int64     `json:"listing_id"`
	ListingName       string    `json:"listing_name,omitempty"`
	UserID            int64     `json:"user_id"`
	CheckinDate       time.Time `json:"checkin_date"`
	CheckoutDate      time.Time `json:"checkout_date"`
	NumberOfPeople    int       `json:"number_of_people"`
	Amount            int64     `json:"amount"`
	CheckoutSessionID string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

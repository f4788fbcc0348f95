package models

import "time"

type Favorite struct {
	ID          int64     `json:"id"`
	ListingID   int64     `json:"listing_id"`
	ListingName string    `json:"listing_name,omitempty"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

import "time"

type Listing struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	ImageName   string    `json:"image_name" yaml:"image_name"`
	ImageURL    string    `json:"image_url,omitempty" yaml:"-"`
	Description string    `json:"description" yaml:"description"`
	Price       int64     `json:"price" yaml:"price"`
	Capacity    int       `json:"capacity" yaml:"capacity"`
	PostalCode  string    `json:"postal_code" yaml:"postal_code"`
	Address     string    `json:"address" yaml:"address"`
	PhoneNumber string    `json:"phone_number" yaml:"phone_number"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// ListingFilter narrows the listing index. Zero values mean "no filter".
type ListingFilter struct {
	Keyword  string
	Area     string
	MaxPrice int64
	Order    string
}

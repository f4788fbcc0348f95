package models

const (
	RoleGeneral = "ROLE_GENERAL"
	RoleAdmin   = "ROLE_ADMIN"
)

// DateLayout is the wire format of check-in/check-out dates.
const DateLayout = "2006-01-02"

const (
	// DefaultSessionTTL is how long a staged intent lives, in seconds.
	DefaultSessionTTL = 30 * 60

	// DefaultPageSize is the page size for plain lists.
	DefaultPageSize = 10

	// ListingsPageSize is the page size of listing search.
	ListingsPageSize = 15

	// LatestReviewsCount is how many recent reviews a listing page shows.
	LatestReviewsCount = 6

	// NewestListingsCount is how many new listings the home page shows.
	NewestListingsCount = 8

	// PopularListingsCount is how many popular listings the home page shows.
	PopularListingsCount = 3

	// BookingAttemptsPerWindow caps booking form submissions per window.
	BookingAttemptsPerWindow = 20

	// BookingAttemptsWindow is the submission window, in seconds.
	BookingAttemptsWindow = 60

	// FaqPageSize is the page size of FAQ search.
	FaqPageSize = 5
)

const (
	OrderCreatedAtDesc = "createdAtDesc"
	OrderPriceAsc      = "priceAsc"
)

package domain

import (
	"context"
	"io"
	"time"

	"stayhub/internal/models"
)

type ListingRepository interface {
	GetListing(ctx context.Context, id int64) (*models.Listing, error)
	SearchListings(ctx context.Context, filter models.ListingFilter, page models.PageRequest) (models.Page[*models.Listing], error)
	GetNewestListings(ctx context.Context, limit int) ([]*models.Listing, error)
	GetPopularListings(ctx context.Context, limit int) ([]*models.Listing, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
	UpdateListing(ctx context.Context, listing *models.Listing) error
	DeleteListing(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservationBySessionID(ctx context.Context, sessionID string) (*models.Reservation, error)
	GetUserReservations(ctx context.Context, userID int64, page models.PageRequest) (models.Page[*models.Reservation], error)
	CountReservations(ctx context.Context) (int64, error)
}

type ReviewRepository interface {
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	GetLatestReviews(ctx context.Context, listingID int64, limit int) ([]*models.Review, error)
	GetListingReviews(ctx context.Context, listingID int64, page models.PageRequest) (models.Page[*models.Review], error)
	GetReviewByListingAndUser(ctx context.Context, listingID, userID int64) (*models.Review, error)
	CountListingReviews(ctx context.Context, listingID int64) (int64, error)
	CreateReview(ctx context.Context, review *models.Review) error
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
}

type FavoriteRepository interface {
	GetFavorite(ctx context.Context, id int64) (*models.Favorite, error)
	GetFavoriteByListingAndUser(ctx context.Context, listingID, userID int64) (*models.Favorite, error)
	GetUserFavorites(ctx context.Context, userID int64, page models.PageRequest) (models.Page[*models.Favorite], error)
	CreateFavorite(ctx context.Context, favorite *models.Favorite) error
	DeleteFavorite(ctx context.Context, id int64) error
}

type FaqRepository interface {
	SearchFaqs(ctx context.Context, keyword string, page models.PageRequest) (models.Page[*models.Faq], error)
}

// Repository is the full persistence collaborator.
type Repository interface {
	ListingRepository
	UserRepository
	ReservationRepository
	ReviewRepository
	FavoriteRepository
	FaqRepository
}

// IntentStore holds staged booking intents keyed by session id.
// GetIntent returns (nil, nil) when nothing is staged.
type IntentStore interface {
	GetIntent(ctx context.Context, sessionID string) (*models.BookingIntent, error)
	SetIntent(ctx context.Context, intent *models.BookingIntent) error
	ClearIntent(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ImageStore persists listing images and returns the stored object name.
type ImageStore interface {
	Save(ctx context.Context, originalName string, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

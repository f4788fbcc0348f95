package service

import (
	"context"
	"errors"
	"fmt"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

type Home struct {
	Newest  []*models.Listing `json:"newest"`
	Popular []*models.Listing `json:"popular"`
}

// ListingDetail is a listing as seen by one caller.
type ListingDetail struct {
	Listing       *models.Listing  `json:"listing"`
	LatestReviews []*models.Review `json:"latest_reviews"`
	ReviewCount   int64            `json:"review_count"`
	IsFavorite    bool             `json:"is_favorite"`
	FavoriteID    int64            `json:"favorite_id,omitempty"`
	HasReviewed   bool             `json:"has_reviewed"`
}

type ListingService struct {
	repo   domain.Repository
	images domain.ImageStore
	logger *zerolog.Logger
}

func NewListingService(repo domain.Repository, images domain.ImageStore, logger *zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, images: images, logger: logger}
}

func (s *ListingService) Home(ctx context.Context) (*Home, error) {
	newest, err := s.repo.GetNewestListings(ctx, models.NewestListingsCount)
	if err != nil {
		return nil, fmt.Errorf("newest listings: %w", err)
	}
	popular, err := s.repo.GetPopularListings(ctx, models.PopularListingsCount)
	if err != nil {
		return nil, fmt.Errorf("popular listings: %w", err)
	}
	s.attachImages(newest...)
	s.attachImages(popular...)
	return &Home{Newest: newest, Popular: popular}, nil
}

func (s *ListingService) Search(ctx context.Context, filter models.ListingFilter, page models.PageRequest) (models.Page[*models.Listing], error) {
	if filter.Order != models.OrderPriceAsc {
		filter.Order = models.OrderCreatedAtDesc
	}
	result, err := s.repo.SearchListings(ctx, filter, page.Normalize(models.ListingsPageSize))
	if err != nil {
		return result, err
	}
	s.attachImages(result.Items...)
	return result, nil
}

// Detail loads a listing with its newest reviews. userID 0 is an anonymous caller.
func (s *ListingService) Detail(ctx context.Context, listingID, userID int64) (*ListingDetail, error) {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.GetLatestReviews(ctx, listingID, models.LatestReviewsCount)
	if err != nil {
		return nil, fmt.Errorf("latest reviews: %w", err)
	}
	count, err := s.repo.CountListingReviews(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	detail := &ListingDetail{Listing: listing, LatestReviews: reviews, ReviewCount: count}
	if userID == 0 {
		return detail, nil
	}

	fav, err := s.repo.GetFavoriteByListingAndUser(ctx, listingID, userID)
	switch {
	case err == nil:
		detail.IsFavorite = true
		detail.FavoriteID = fav.ID
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("favorite lookup: %w", err)
	}

	_, err = s.repo.GetReviewByListingAndUser(ctx, listingID, userID)
	switch {
	case err == nil:
		detail.HasReviewed = true
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("review lookup: %w", err)
	}

	return detail, nil
}

func (s *ListingService) Get(ctx context.Context, listingID int64) (*models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	s.attachImages(listing)
	return listing, nil
}

func (s *ListingService) attachImages(listings ...*models.Listing) {
	if s.images == nil {
		return
	}
	for _, l := range listings {
		if l.ImageName != "" {
			l.ImageURL = s.images.URL(l.ImageName)
		}
	}
}

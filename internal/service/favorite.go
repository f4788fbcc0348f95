package service

import (
	"context"
	"errors"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

type FavoriteService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewFavoriteService(repo domain.Repository, logger *zerolog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, logger: logger}
}

func (s *FavoriteService) List(ctx context.Context, userID int64, page models.PageRequest) (models.Page[*models.Favorite], error) {
	return s.repo.GetUserFavorites(ctx, userID, page.Normalize(models.DefaultPageSize))
}

// Add marks a listing as a favorite. Adding it twice fails with
// database.ErrAlreadyFavorite.
func (s *FavoriteService) Add(ctx context.Context, userID, listingID int64) (*models.Favorite, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	fav := &models.Favorite{ListingID: listingID, UserID: userID}
	if err := s.repo.CreateFavorite(ctx, fav); err != nil {
		return nil, err
	}
	fav.ListingName = listing.Name
	return fav, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, favoriteID int64) error {
	fav, err := s.repo.GetFavorite(ctx, favoriteID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if fav.UserID != userID {
		return ErrForbidden
	}
	return s.repo.DeleteFavorite(ctx, favoriteID)
}

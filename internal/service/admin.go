package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

// ListingInput is the admin listing form.
type ListingInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Capacity    int    `json:"capacity"`
	PostalCode  string `json:"postal_code"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

// Upload is an image sent along with a listing form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func (in ListingInput) validate(image *Upload) error {
	fields := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fields.add("name", "Please enter the listing name.")
	}
	if strings.TrimSpace(in.Description) == "" {
		fields.add("description", "Please enter a description.")
	}
	if in.Price < 1 {
		fields.add("price", "Price must be at least 1.")
	}
	if in.Capacity < 1 {
		fields.add("capacity", "Capacity must be at least 1.")
	}
	if strings.TrimSpace(in.PostalCode) == "" {
		fields.add("postal_code", "Please enter the postal code.")
	}
	if strings.TrimSpace(in.Address) == "" {
		fields.add("address", "Please enter the address.")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		fields.add("phone_number", "Please enter the phone number.")
	}
	if image != nil && !strings.HasPrefix(image.ContentType, "image/") {
		fields.add("image", "Only image files can be uploaded.")
	}
	return fields.err()
}

func (in ListingInput) apply(l *models.Listing) {
	l.Name = strings.TrimSpace(in.Name)
	l.Description = strings.TrimSpace(in.Description)
	l.Price = in.Price
	l.Capacity = in.Capacity
	l.PostalCode = strings.TrimSpace(in.PostalCode)
	l.Address = strings.TrimSpace(in.Address)
	l.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
}

// AdminListingService manages listings and their images.
type AdminListingService struct {
	repo     domain.Repository
	listings *ListingService
	images   domain.ImageStore
	logger   *zerolog.Logger
}

func NewAdminListingService(repo domain.Repository, images domain.ImageStore, logger *zerolog.Logger) *AdminListingService {
	return &AdminListingService{
		repo:     repo,
		listings: NewListingService(repo, images, logger),
		images:   images,
		logger:   logger,
	}
}

func (s *AdminListingService) List(ctx context.Context, keyword string, page models.PageRequest) (models.Page[*models.Listing], error) {
	return s.listings.Search(ctx, models.ListingFilter{Keyword: keyword}, page)
}

func (s *AdminListingService) Get(ctx context.Context, id int64) (*models.Listing, error) {
	return s.listings.Get(ctx, id)
}

func (s *AdminListingService) Create(ctx context.Context, in ListingInput, image *Upload) (*models.Listing, error) {
	if err := in.validate(image); err != nil {
		return nil, err
	}

	listing := &models.Listing{}
	in.apply(listing)

	if image != nil {
		name, err := s.images.Save(ctx, image.Filename, image.ContentType, image.Body)
		if err != nil {
			return nil, err
		}
		listing.ImageName = name
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		s.dropImage(ctx, listing.ImageName)
		return nil, err
	}

	s.listings.attachImages(listing)
	s.logger.Info().Int64("listing_id", listing.ID).Msg("listing created")
	return listing, nil
}

// Update replaces the listing fields and, when image is given, its image.
func (s *AdminListingService) Update(ctx context.Context, id int64, in ListingInput, image *Upload) (*models.Listing, error) {
	if err := in.validate(image); err != nil {
		return nil, err
	}

	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldImage := listing.ImageName
	in.apply(listing)

	if image != nil {
		name, err := s.images.Save(ctx, image.Filename, image.ContentType, image.Body)
		if err != nil {
			return nil, err
		}
		listing.ImageName = name
	}

	if err := s.repo.UpdateListing(ctx, listing); err != nil {
		if listing.ImageName != oldImage {
			s.dropImage(ctx, listing.ImageName)
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.ImageName != oldImage {
		s.dropImage(ctx, oldImage)
	}

	s.listings.attachImages(listing)
	return listing, nil
}

// Delete removes the listing with its reservations, reviews and favorites.
func (s *AdminListingService) Delete(ctx context.Context, id int64) error {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteListing(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	s.dropImage(ctx, listing.ImageName)
	s.logger.Info().Int64("listing_id", id).Msg("listing deleted")
	return nil
}

func (s *AdminListingService) dropImage(ctx context.Context, name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		s.logger.Warn().Err(err).Str("image", name).Msg("failed to delete image")
	}
}

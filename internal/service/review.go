package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

const maxReviewLength = 300

type ReviewInput struct {
	Score   int    `json:"score"`
	Content string `json:"content"`
}

func (in ReviewInput) validate() error {
	fields := FieldErrors{}
	if in.Score < 1 || in.Score > 5 {
		fields.add("score", "Please choose a score between 1 and 5.")
	}
	content := strings.TrimSpace(in.Content)
	switch {
	case content == "":
		fields.add("content", "Please enter a comment.")
	case utf8.RuneCountInString(content) > maxReviewLength:
		fields.add("content", "Comments must be 300 characters or fewer.")
	}
	return fields.err()
}

type ReviewService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewReviewService(repo domain.Repository, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{repo: repo, logger: logger}
}

func (s *ReviewService) List(ctx context.Context, listingID int64, page models.PageRequest) (models.Page[*models.Review], error) {
	if err := s.requireListing(ctx, listingID); err != nil {
		return models.Page[*models.Review]{}, err
	}
	return s.repo.GetListingReviews(ctx, listingID, page.Normalize(models.DefaultPageSize))
}

// Create posts the user's review. A second review of the same listing fails
// with database.ErrDuplicateReview.
func (s *ReviewService) Create(ctx context.Context, userID, listingID int64, in ReviewInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireListing(ctx, listingID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ListingID: listingID,
		UserID:    userID,
		Score:     in.Score,
		Content:   strings.TrimSpace(in.Content),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("review_id", review.ID).Int64("listing_id", listingID).Msg("review created")
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, userID, reviewID int64, in ReviewInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	review, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Score = in.Score
	review.Content = strings.TrimSpace(in.Content)
	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, userID, reviewID int64) error {
	if _, err := s.owned(ctx, userID, reviewID); err != nil {
		return err
	}
	return s.repo.DeleteReview(ctx, reviewID)
}

// owned loads a review and checks that userID wrote it.
func (s *ReviewService) owned(ctx context.Context, userID, reviewID int64) (*models.Review, error) {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if review.UserID != userID {
		s.logger.Warn().Int64("review_id", reviewID).Int64("user_id", userID).Msg("review access denied")
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *ReviewService) requireListing(ctx context.Context, listingID int64) error {
	if _, err := s.repo.GetListing(ctx, listingID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	return nil
}

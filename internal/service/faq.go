package service

import (
	"context"
	"strings"

	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

type FaqService struct {
	repo   domain.FaqRepository
	logger *zerolog.Logger
}

func NewFaqService(repo domain.FaqRepository, logger *zerolog.Logger) *FaqService {
	return &FaqService{repo: repo, logger: logger}
}

// Search pages FAQ entries in fixed pages of models.FaqPageSize. An empty
// keyword lists everything.
func (s *FaqService) Search(ctx context.Context, keyword string, page int) (models.Page[*models.Faq], error) {
	req := models.PageRequest{Page: page, Size: models.FaqPageSize}.Normalize(models.FaqPageSize)
	return s.repo.SearchFaqs(ctx, strings.TrimSpace(keyword), req)
}

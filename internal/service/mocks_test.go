package service

import (
	"context"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/models"
	"stayhub/internal/payment"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v76"
)

type mockRepo struct {
	mock.Mock
}

var _ domain.Repository = (*mockRepo)(nil)

func (m *mockRepo) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *mockRepo) SearchListings(ctx context.Context, f models.ListingFilter, p models.PageRequest) (models.Page[*models.Listing], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(models.Page[*models.Listing]), args.Error(1)
}
func (m *mockRepo) GetNewestListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}
func (m *mockRepo) GetPopularListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Listing), args.Error(1)
}
func (m *mockRepo) CreateListing(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockRepo) UpdateListing(ctx context.Context, l *models.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockRepo) DeleteListing(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetReservationBySessionID(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetUserReservations(ctx context.Context, userID int64, p models.PageRequest) (models.Page[*models.Reservation], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(models.Page[*models.Reservation]), args.Error(1)
}
func (m *mockRepo) CountReservations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *mockRepo) GetLatestReviews(ctx context.Context, listingID int64, limit int) ([]*models.Review, error) {
	args := m.Called(ctx, listingID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}
func (m *mockRepo) GetListingReviews(ctx context.Context, listingID int64, p models.PageRequest) (models.Page[*models.Review], error) {
	args := m.Called(ctx, listingID, p)
	return args.Get(0).(models.Page[*models.Review]), args.Error(1)
}
func (m *mockRepo) GetReviewByListingAndUser(ctx context.Context, listingID, userID int64) (*models.Review, error) {
	args := m.Called(ctx, listingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *mockRepo) CountListingReviews(ctx context.Context, listingID int64) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) UpdateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) GetFavorite(ctx context.Context, id int64) (*models.Favorite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Favorite), args.Error(1)
}
func (m *mockRepo) GetFavoriteByListingAndUser(ctx context.Context, listingID, userID int64) (*models.Favorite, error) {
	args := m.Called(ctx, listingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Favorite), args.Error(1)
}
func (m *mockRepo) GetUserFavorites(ctx context.Context, userID int64, p models.PageRequest) (models.Page[*models.Favorite], error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(models.Page[*models.Favorite]), args.Error(1)
}
func (m *mockRepo) CreateFavorite(ctx context.Context, f *models.Favorite) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockRepo) DeleteFavorite(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) SearchFaqs(ctx context.Context, keyword string, p models.PageRequest) (models.Page[*models.Faq], error) {
	args := m.Called(ctx, keyword, p)
	return args.Get(0).(models.Page[*models.Faq]), args.Error(1)
}

type mockIntents struct {
	mock.Mock
}

func (m *mockIntents) GetIntent(ctx context.Context, sessionID string) (*models.BookingIntent, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingIntent), args.Error(1)
}
func (m *mockIntents) SetIntent(ctx context.Context, intent *models.BookingIntent) error {
	return m.Called(ctx, intent).Error(0)
}
func (m *mockIntents) ClearIntent(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockIntents) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, sessionID, limit, window)
	return args.Bool(0), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) OpenSession(ctx context.Context, intent *models.BookingIntent, listing *models.Listing, user *models.User) payment.Result {
	return m.Called(ctx, intent, listing, user).Get(0).(payment.Result)
}

func (m *mockGateway) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(stripe.Event), args.Error(1)
}

func (m *mockGateway) RetrieveCompletedSession(ctx context.Context, sessionID string) (map[string]string, payment.Result) {
	args := m.Called(ctx, sessionID)
	md, _ := args.Get(0).(map[string]string)
	return md, args.Get(1).(payment.Result)
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) PublishJSON(eventType string, payload interface{}) error {
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(user *models.User) (string, error) {
	return "token-for-" + user.Email, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/metrics"
	"stayhub/internal/models"
	"stayhub/internal/payment"

	"github.com/rs/zerolog"
)

// SessionOpener opens a hosted checkout session for a staged intent.
type SessionOpener interface {
	OpenSession(ctx context.Context, intent *models.BookingIntent, listing *models.Listing, user *models.User) payment.Result
}

// ValidationResult reports every problem found with a requested stay.
type ValidationResult struct {
	DateOrderError bool
	CapacityError  bool
}

func (v ValidationResult) OK() bool {
	return !v.DateOrderError && !v.CapacityError
}

// ValidateStay checks date order and party size independently.
func ValidateStay(checkin, checkout time.Time, partySize, capacity int) ValidationResult {
	return ValidationResult{
		DateOrderError: !models.DateOnly(checkin).Before(models.DateOnly(checkout)),
		CapacityError:  partySize > capacity,
	}
}

// ComputeAmount prices a stay as unitPrice per night.
func ComputeAmount(checkin, checkout time.Time, unitPrice int64) int64 {
	return unitPrice * int64(models.DaysBetween(checkin, checkout))
}

// BookingInput is the raw booking form.
type BookingInput struct {
	CheckinDate    string
	CheckoutDate   string
	NumberOfPeople string
}

// InputError carries field messages plus what the input view needs to be
// shown again.
type InputError struct {
	Fields        FieldErrors
	Listing       *models.Listing
	PreviousDates string
}

func (e *InputError) Error() string {
	return e.Fields.Error()
}

func (e *InputError) Unwrap() error {
	return e.Fields
}

// Confirmation is an opened payment session for a staged intent.
type Confirmation struct {
	Intent    *models.BookingIntent
	Listing   *models.Listing
	SessionID string
}

type BookingService struct {
	repo     domain.Repository
	intents  domain.IntentStore
	gateway  SessionOpener
	attempts int
	window   time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, intents domain.IntentStore, gateway SessionOpener, attempts int, window time.Duration, logger *zerolog.Logger) *BookingService {
	if attempts <= 0 {
		attempts = models.BookingAttemptsPerWindow
	}
	if window <= 0 {
		window = models.BookingAttemptsWindow * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{
		repo:     repo,
		intents:  intents,
		gateway:  gateway,
		attempts: attempts,
		window:   window,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitBookingInput validates the form for listingID and stages the priced
// intent for the session. Validation problems come back as *InputError.
func (s *BookingService) SubmitBookingInput(ctx context.Context, sessionID string, userID, listingID int64, in BookingInput) (*models.BookingIntent, error) {
	allowed, err := s.intents.CheckRateLimit(ctx, sessionID, s.attempts, s.window)
	if err != nil {
		s.logger.Warn().Err(err).Msg("booking throttle unavailable")
	} else if !allowed {
		metrics.IncBookingValidation("throttled")
		return nil, ErrTooManyAttempts
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	fields := FieldErrors{}
	checkin, checkinOK := parseFormDate(fields, "checkinDate", in.CheckinDate, "Please select a check-in date.")
	checkout, checkoutOK := parseFormDate(fields, "checkoutDate", in.CheckoutDate, "Please select a check-out date.")

	people, peopleErr := strconv.Atoi(strings.TrimSpace(in.NumberOfPeople))
	peopleOK := peopleErr == nil && people >= 1
	switch {
	case strings.TrimSpace(in.NumberOfPeople) == "":
		fields.add("numberOfPeople", "Please enter the number of guests.")
	case !peopleOK:
		fields.add("numberOfPeople", "Number of guests must be at least 1.")
	}

	if checkinOK && checkoutOK {
		if ValidateStay(checkin, checkout, 0, listing.Capacity).DateOrderError {
			fields.add("checkinDate", "Check-in date must be before the check-out date.")
		}
	}
	if peopleOK && people > listing.Capacity {
		fields.add("numberOfPeople", "Number of guests exceeds the capacity of this listing.")
	}

	if len(fields) > 0 {
		metrics.IncBookingValidation("invalid")
		inputErr := &InputError{Fields: fields, Listing: listing}
		if checkinOK && checkoutOK {
			inputErr.PreviousDates = checkin.Format(models.DateLayout) + " to " + checkout.Format(models.DateLayout)
		}
		return nil, inputErr
	}

	intent := &models.BookingIntent{
		UserID:         userID,
		ListingID:      listing.ID,
		CheckinDate:    checkin,
		CheckoutDate:   checkout,
		NumberOfPeople: people,
		Amount:         ComputeAmount(checkin, checkout, listing.Price),
	}
	if err := s.StageIntent(ctx, sessionID, intent); err != nil {
		return nil, err
	}

	metrics.IncBookingValidation("ok")
	return intent, nil
}

// StageIntent replaces whatever intent the session held.
func (s *BookingService) StageIntent(ctx context.Context, sessionID string, intent *models.BookingIntent) error {
	intent.SessionID = sessionID
	intent.StagedAt = s.now().UTC()

	if err := s.intents.SetIntent(ctx, intent); err != nil {
		return fmt.Errorf("stage intent: %w", err)
	}

	s.logger.Debug().
		Int64("listing_id", intent.ListingID).
		Int64("user_id", intent.UserID).
		Int64("amount", intent.Amount).
		Msg("booking intent staged")
	return nil
}

// RetrieveStagedIntent returns the session's intent. An intent staged by a
// different user is treated as missing.
func (s *BookingService) RetrieveStagedIntent(ctx context.Context, sessionID string, userID int64) (*models.BookingIntent, error) {
	if sessionID == "" {
		return nil, ErrIntentExpiredOrMissing
	}
	intent, err := s.intents.GetIntent(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load intent: %w", err)
	}
	if intent == nil || intent.UserID != userID {
		return nil, ErrIntentExpiredOrMissing
	}
	return intent, nil
}

// Confirm opens a payment session for the staged intent. The intent is only
// cleared once the provider accepted the session, so a failed attempt can be
// retried.
func (s *BookingService) Confirm(ctx context.Context, sessionID string, userID int64) (*Confirmation, error) {
	intent, err := s.RetrieveStagedIntent(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	listing, err := s.repo.GetListing(ctx, intent.ListingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.clear(ctx, sessionID)
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	res := s.gateway.OpenSession(ctx, intent, listing, user)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s", ErrPaymentUnavailable, res.Err)
	}

	s.clear(ctx, sessionID)
	return &Confirmation{Intent: intent, Listing: listing, SessionID: res.SessionID}, nil
}

// ListReservations returns the user's reservations, newest first.
func (s *BookingService) ListReservations(ctx context.Context, userID int64, page models.PageRequest) (models.Page[*models.Reservation], error) {
	return s.repo.GetUserReservations(ctx, userID, page.Normalize(models.DefaultPageSize))
}

func (s *BookingService) clear(ctx context.Context, sessionID string) {
	if err := s.intents.ClearIntent(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear booking intent")
	}
}

func parseFormDate(fields FieldErrors, field, value, missing string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		fields.add(field, missing)
		return time.Time{}, false
	}
	d, err := models.ParseDate(value)
	if err != nil {
		fields.add(field, "Dates must use the yyyy-MM-dd format.")
		return time.Time{}, false
	}
	return d, true
}

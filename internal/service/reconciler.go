package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/events"
	"stayhub/internal/metrics"
	"stayhub/internal/models"
	"stayhub/internal/payment"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
)

// PaymentProvider is what the reconciler needs from the payment gateway.
type PaymentProvider interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
	RetrieveCompletedSession(ctx context.Context, sessionID string) (map[string]string, payment.Result)
}

// Outcome is the HTTP answer to a webhook delivery.
type Outcome struct {
	Status int
	Body   string
}

const webhookAck = "Success"

var acknowledged = Outcome{Status: http.StatusOK, Body: webhookAck}

// Reconciler turns completed checkout sessions into reservations.
type Reconciler struct {
	repo     domain.Repository
	provider PaymentProvider
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewReconciler(repo domain.Repository, provider PaymentProvider, eventBus domain.EventPublisher, logger *zerolog.Logger) *Reconciler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Reconciler{
		repo:     repo,
		provider: provider,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleWebhook verifies and dispatches one delivery. Only a bad signature
// is refused; everything else is acknowledged so the provider stops retrying.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) Outcome {
	event, err := r.provider.VerifyEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			metrics.IncWebhook("invalid_signature")
			r.logger.Warn().Err(err).Msg("rejected webhook with invalid signature")
			return Outcome{Status: http.StatusBadRequest}
		}
		metrics.IncWebhook("malformed")
		r.logger.Error().Err(err).Msg("webhook event could not be decoded")
		return acknowledged
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		metrics.IncWebhook("ignored")
		r.logger.Debug().Str("event_type", string(event.Type)).Str("event_id", event.ID).Msg("webhook ignored")
		return acknowledged
	}

	if _, err := r.ProcessCompletedSession(ctx, event); err != nil {
		r.logger.Error().Err(err).Str("event_id", event.ID).Msg("completed session not reconciled")
	}
	return acknowledged
}

// ProcessCompletedSession decodes the session from the event, re-fetches it
// from the provider and commits the reservation its metadata describes.
func (r *Reconciler) ProcessCompletedSession(ctx context.Context, event stripe.Event) (*models.Reservation, error) {
	var cs stripe.CheckoutSession
	if event.Data == nil || len(event.Data.Raw) == 0 {
		metrics.IncWebhook("decode_failed")
		return nil, errors.New("event carries no session")
	}
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil || cs.ID == "" {
		metrics.IncWebhook("decode_failed")
		if err == nil {
			err = errors.New("session id missing")
		}
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	md, res := r.provider.RetrieveCompletedSession(ctx, cs.ID)
	if !res.OK() {
		metrics.IncWebhook("retrieve_failed")
		return nil, fmt.Errorf("%w: retrieve session %s: %s", ErrPaymentUnavailable, cs.ID, res.Err)
	}

	return r.CommitReservation(ctx, md, cs.ID)
}

// CommitReservation persists the reservation described by metadata. A session
// that was already committed yields the existing reservation.
func (r *Reconciler) CommitReservation(ctx context.Context, metadata map[string]string, sessionID string) (*models.Reservation, error) {
	logger := r.logger.With().Str("checkout_session_id", sessionID).Logger()

	if existing, err := r.existing(ctx, sessionID); err != nil || existing != nil {
		return existing, err
	}

	reservation, err := reservationFromMetadata(metadata)
	if err != nil {
		r.reject(&logger, sessionID, metadata, "invalid_metadata", err)
		return nil, err
	}
	reservation.CheckoutSessionID = sessionID

	listing, err := r.repo.GetListing(ctx, reservation.ListingID)
	if err != nil {
		return nil, r.entityError(&logger, sessionID, metadata, "listing_not_found", err)
	}
	if _, err := r.repo.GetUserByID(ctx, reservation.UserID); err != nil {
		return nil, r.entityError(&logger, sessionID, metadata, "user_not_found", err)
	}

	if err := r.repo.CreateReservation(ctx, reservation); err != nil {
		if errors.Is(err, database.ErrDuplicateReservation) {
			// a concurrent delivery of the same session won the insert
			return r.existing(ctx, sessionID)
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	reservation.ListingName = listing.Name

	metrics.IncReservationCommitted()
	metrics.IncWebhook("committed")
	logger.Info().
		Int64("reservation_id", reservation.ID).
		Int64("listing_id", reservation.ListingID).
		Int64("user_id", reservation.UserID).
		Int64("amount", reservation.Amount).
		Msg("reservation committed")

	r.publish(events.EventReservationCommitted, events.ReservationEventPayload{
		ReservationID:     reservation.ID,
		CheckoutSessionID: sessionID,
		ListingID:         reservation.ListingID,
		ListingName:       listing.Name,
		UserID:            reservation.UserID,
		CheckinDate:       reservation.CheckinDate.Format(models.DateLayout),
		CheckoutDate:      reservation.CheckoutDate.Format(models.DateLayout),
		NumberOfPeople:    reservation.NumberOfPeople,
		Amount:            reservation.Amount,
		CommittedAt:       r.now().UTC(),
	})
	return reservation, nil
}

func (r *Reconciler) existing(ctx context.Context, sessionID string) (*models.Reservation, error) {
	existing, err := r.repo.GetReservationBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		metrics.IncWebhook("duplicate")
		r.logger.Info().Str("checkout_session_id", sessionID).Int64("reservation_id", existing.ID).Msg("session already reconciled")
		return existing, nil
	case errors.Is(err, database.ErrNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("lookup reservation: %w", err)
	}
}

func (r *Reconciler) entityError(logger *zerolog.Logger, sessionID string, metadata map[string]string, reason string, err error) error {
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	wrapped := fmt.Errorf("%w: %s", ErrEntityNotFound, reason)
	r.reject(logger, sessionID, metadata, reason, wrapped)
	return wrapped
}

// reject records a paid session that cannot become a reservation.
func (r *Reconciler) reject(logger *zerolog.Logger, sessionID string, metadata map[string]string, reason string, err error) {
	metrics.IncWebhook(reason)
	logger.Error().Err(err).Str("reason", reason).Interface("metadata", metadata).Msg("paid session rejected")

	r.publish(events.EventReservationRejected, events.ReservationRejectedPayload{
		CheckoutSessionID: sessionID,
		Reason:            reason,
		Metadata:          metadata,
		RejectedAt:        r.now().UTC(),
	})
}

func (r *Reconciler) publish(eventType string, payload interface{}) {
	if r.eventBus == nil {
		return
	}
	if err := r.eventBus.PublishJSON(eventType, payload); err != nil {
		r.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

func reservationFromMetadata(md map[string]string) (*models.Reservation, error) {
	listingID, err := metaInt(md, models.MetaListingID)
	if err != nil {
		return nil, err
	}
	userID, err := metaInt(md, models.MetaUserID)
	if err != nil {
		return nil, err
	}
	people, err := metaInt(md, models.MetaNumberOfPeople)
	if err != nil {
		return nil, err
	}
	amount, err := metaInt(md, models.MetaAmount)
	if err != nil {
		return nil, err
	}
	checkin, err := metaDate(md, models.MetaCheckinDate)
	if err != nil {
		return nil, err
	}
	checkout, err := metaDate(md, models.MetaCheckoutDate)
	if err != nil {
		return nil, err
	}

	return &models.Reservation{
		ListingID:      listingID,
		UserID:         userID,
		CheckinDate:    checkin,
		CheckoutDate:   checkout,
		NumberOfPeople: int(people),
		Amount:         amount,
	}, nil
}

func metaInt(md map[string]string, key string) (int64, error) {
	v, ok := md[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s missing", ErrInvalidMetadata, key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidMetadata, key, v)
	}
	return n, nil
}

func metaDate(md map[string]string, key string) (time.Time, error) {
	v, ok := md[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s missing", ErrInvalidMetadata, key)
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", ErrInvalidMetadata, key, v)
	}
	return d, nil
}

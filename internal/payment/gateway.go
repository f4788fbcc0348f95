package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stayhub/internal/metrics"
	"stayhub/internal/models"
	"stayhub/internal/worker"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// SessionAPI is the subset of the checkout session client the gateway calls.
type SessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// NewStripeSessions returns a checkout session client bound to secretKey.
func NewStripeSessions(secretKey string) SessionAPI {
	return session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
}

type Config struct {
	SuccessURL    string
	CancelURL     string
	Currency      string
	WebhookSecret string
	Retry         worker.RetryPolicy
}

// Gateway opens and retrieves hosted checkout sessions. Provider failures are
// never returned as errors; callers get a Result tagged with a Category.
type Gateway struct {
	sessions SessionAPI
	cfg      Config
	logger   *zerolog.Logger
	wait     func(ctx context.Context, attempt int) error
}

func NewGateway(sessions SessionAPI, cfg Config, logger *zerolog.Logger) *Gateway {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyJPY)
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = 200 * time.Millisecond
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 2 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Gateway{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		wait:     cfg.Retry.Wait,
	}
}

// OpenSession creates a checkout session for the staged intent. The booking
// details ride along as metadata on both the session and its payment intent.
func (g *Gateway) OpenSession(ctx context.Context, intent *models.BookingIntent, listing *models.Listing, user *models.User) Result {
	md := intent.Metadata()

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{string(stripe.PaymentMethodTypeCard)}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(listing.Name),
					},
					UnitAmount: stripe.Int64(intent.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: md,
		},
	}
	if user != nil && user.Email != "" {
		params.CustomerEmail = stripe.String(user.Email)
	}
	for k, v := range md {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		c := g.report("open_session", err)
		g.logger.Error().Err(err).
			Str("category", c.String()).
			Int64("listing_id", intent.ListingID).
			Int64("user_id", intent.UserID).
			Msg("failed to open checkout session")
		return failed(c)
	}

	g.logger.Info().
		Str("checkout_session_id", s.ID).
		Int64("listing_id", intent.ListingID).
		Int64("amount", intent.Amount).
		Msg("checkout session opened")
	return ok(s.ID)
}

// RetrieveCompletedSession fetches the session with its payment intent expanded
// and returns the booking metadata. Rate limits and network errors are retried
// per the configured policy.
func (g *Gateway) RetrieveCompletedSession(ctx context.Context, sessionID string) (map[string]string, Result) {
	var (
		s   *stripe.CheckoutSession
		err error
	)
	for attempt := 1; ; attempt++ {
		params := &stripe.CheckoutSessionParams{}
		params.AddExpand("payment_intent")
		params.Context = ctx

		s, err = g.sessions.Get(sessionID, params)
		if err == nil {
			break
		}

		c := g.report("retrieve_session", err)
		if !c.Retryable() || g.cfg.Retry.Exhausted(attempt) {
			g.logger.Error().Err(err).
				Str("category", c.String()).
				Str("checkout_session_id", sessionID).
				Int("attempt", attempt).
				Msg("failed to retrieve checkout session")
			return nil, failed(c)
		}

		g.logger.Warn().Err(err).
			Str("category", c.String()).
			Str("checkout_session_id", sessionID).
			Dur("delay", g.cfg.Retry.NextDelay(attempt)).
			Msg("retrying checkout session retrieval")
		if err := g.wait(ctx, attempt); err != nil {
			return nil, failed(NetworkError)
		}
	}

	return sessionMetadata(s), ok(s.ID)
}

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMalformedEvent   = errors.New("webhook event could not be decoded")
)

// VerifyEvent checks the Stripe-Signature header against the webhook secret
// and decodes the event. The event API version is not enforced.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	var event stripe.Event
	if err := webhook.ValidatePayload(payload, signature, g.cfg.WebhookSecret); err != nil {
		return event, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return event, nil
}

func (g *Gateway) report(operation string, err error) Category {
	c := Classify(err)
	metrics.IncGatewayFailure(operation, c.String())
	return c
}

// sessionMetadata prefers session-level metadata and falls back to the
// expanded payment intent.
func sessionMetadata(s *stripe.CheckoutSession) map[string]string {
	if len(s.Metadata) > 0 {
		return s.Metadata
	}
	if s.PaymentIntent != nil && len(s.PaymentIntent.Metadata) > 0 {
		return s.PaymentIntent.Metadata
	}
	return map[string]string{}
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stayhub/internal/events"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const deadLetterKey = "events:deadletter"

// Sender delivers one event to an external broker.
type Sender interface {
	Send(event *events.Event) error
}

// EventForwarder relays bus events to a Sender from a buffered queue, retrying
// with backoff. Events that still fail are pushed to a redis dead letter list
// when redis is configured, and logged otherwise.
type EventForwarder struct {
	sender      Sender
	redis       *redis.Client
	retryPolicy RetryPolicy
	queue       chan *events.Event
	logger      *zerolog.Logger
	wait        func(ctx context.Context, attempt int) error
}

// NewEventForwarder builds a forwarder with sane defaults.
func NewEventForwarder(sender Sender, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *EventForwarder {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 500 * time.Millisecond
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &EventForwarder{
		sender:      sender,
		redis:       redisClient,
		retryPolicy: retry,
		queue:       make(chan *events.Event, 256),
		logger:      logger,
		wait:        retry.Wait,
	}
}

// Handle is an events.EventHandler. It never blocks the publisher.
func (w *EventForwarder) Handle(event *events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn().Str("event_type", event.Type).Msg("forward queue full, dead-lettering event")
		w.pushDeadLetter(context.Background(), event, errors.New("queue full"))
		return nil
	}
}

// Start launches main loop; stops when ctx is done.
func (w *EventForwarder) Start(ctx context.Context) {
	w.logger.Info().Msg("event forwarder started")
	defer w.logger.Info().Msg("event forwarder stopped")

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case ev := <-w.queue:
			w.process(ctx, ev)
		}
	}
}

// drain makes one delivery attempt for whatever is still queued at shutdown.
func (w *EventForwarder) drain() {
	for {
		select {
		case ev := <-w.queue:
			if err := w.sender.Send(ev); err != nil {
				w.pushDeadLetter(context.Background(), ev, err)
			}
		default:
			return
		}
	}
}

func (w *EventForwarder) process(ctx context.Context, ev *events.Event) {
	for attempt := 1; ; attempt++ {
		err := w.sender.Send(ev)
		if err == nil {
			return
		}
		if w.retryPolicy.Exhausted(attempt) {
			w.logger.Error().Err(err).
				Str("event_type", ev.Type).
				Int("attempts", attempt).
				Msg("event delivery failed")
			w.pushDeadLetter(ctx, ev, err)
			return
		}
		if werr := w.wait(ctx, attempt); werr != nil {
			w.pushDeadLetter(context.Background(), ev, err)
			return
		}
	}
}

type deadLetter struct {
	Event    *events.Event `json:"event"`
	Error    string        `json:"error"`
	FailedAt time.Time     `json:"failed_at"`
}

func (w *EventForwarder) pushDeadLetter(ctx context.Context, ev *events.Event, cause error) {
	if w.redis == nil {
		w.logger.Error().Err(cause).
			Str("event_type", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("event dropped")
		return
	}
	data, err := json.Marshal(deadLetter{Event: ev, Error: cause.Error(), FailedAt: time.Now()})
	if err != nil {
		w.logger.Error().Err(err).Str("event_type", ev.Type).Msg("encode dead letter")
		return
	}
	if err := w.redis.LPush(ctx, deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("event_type", ev.Type).Msg("dead letter push failed")
	}
}

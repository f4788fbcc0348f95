package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationCommitted = "reservation_committed"
	EventReservationRejected  = "reservation_rejected"
)

// ReservationEventPayload is the reservation snapshot published after a
// completed payment is reconciled.
type ReservationEventPayload struct {
	ReservationID     int64     `json:"reservation_id"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	ListingID         int64     `json:"listing_id"`
	ListingName       string    `json:"listing_name"`
	UserID            int64     `json:"user_id"`
	CheckinDate       string    `json:"checkin_date"`
	CheckoutDate      string    `json:"checkout_date"`
	NumberOfPeople    int       `json:"number_of_people"`
	Amount            int64     `json:"amount"`
	CommittedAt       time.Time `json:"committed_at"`
}

// ReservationRejectedPayload reports a paid session that could not be turned
// into a reservation. It needs operator attention.
type ReservationRejectedPayload struct {
	CheckoutSessionID string            `json:"checkout_session_id"`
	Reason            string            `json:"reason"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	RejectedAt        time.Time         `json:"rejected_at"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string    `json:"type"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers synchronously and returns the first handler error.
// Every handler runs even when an earlier one fails.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	ev, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(&ev)
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}

package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverIntentStore routes to primary until it errors, then serves from
// fallback and retries primary reads once per recoveryInterval.
//
// Sessions written while primary is down are tracked in stale. On recovery
// their fallback state (intent or absence) is copied back to primary, so a
// newer intent staged during the outage always wins over what primary kept.
type FailoverIntentStore struct {
	primary   domain.IntentStore
	fallback  domain.IntentStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	stale     sync.Map
}

func NewFailoverIntentStore(primary, fallback domain.IntentStore, logger *zerolog.Logger) *FailoverIntentStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverIntentStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverIntentStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary intent store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverIntentStore) recoveryDue() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverIntentStore) isStale(sessionID string) bool {
	_, ok := r.stale.Load(sessionID)
	return ok
}

func (r *FailoverIntentStore) GetIntent(ctx context.Context, sessionID string) (*models.BookingIntent, error) {
	if !r.isDown.Load() {
		if r.isStale(sessionID) {
			if err := r.resyncSession(ctx, sessionID); err != nil {
				r.markDown(err)
			}
			return r.fallback.GetIntent(ctx, sessionID)
		}
		intent, err := r.primary.GetIntent(ctx, sessionID)
		if err == nil {
			return intent, nil
		}
		r.markDown(err)
	}

	if r.recoveryDue() {
		intent, err := r.primary.GetIntent(ctx, sessionID)
		if err == nil {
			stale := r.isStale(sessionID)
			if err := r.resync(ctx); err != nil {
				r.markDown(err)
				return r.fallback.GetIntent(ctx, sessionID)
			}
			r.isDown.Store(false)
			r.logger.Info().Msg("primary intent store recovered")
			if stale {
				return r.fallback.GetIntent(ctx, sessionID)
			}
			return intent, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetIntent(ctx, sessionID)
}

// resync copies the fallback state of every session written during the
// outage back to primary.
func (r *FailoverIntentStore) resync(ctx context.Context) error {
	var firstErr error
	r.stale.Range(func(key, _ any) bool {
		firstErr = r.resyncSession(ctx, key.(string))
		return firstErr == nil
	})
	return firstErr
}

func (r *FailoverIntentStore) resyncSession(ctx context.Context, sessionID string) error {
	intent, err := r.fallback.GetIntent(ctx, sessionID)
	if err != nil {
		return err
	}
	if intent != nil {
		err = r.primary.SetIntent(ctx, intent)
	} else {
		err = r.primary.ClearIntent(ctx, sessionID)
	}
	if err != nil {
		return err
	}
	r.stale.Delete(sessionID)
	return nil
}

func (r *FailoverIntentStore) SetIntent(ctx context.Context, intent *models.BookingIntent) error {
	if !r.isDown.Load() {
		err := r.primary.SetIntent(ctx, intent)
		if err == nil {
			r.stale.Delete(intent.SessionID)
			return nil
		}
		r.markDown(err)
	}

	r.stale.Store(intent.SessionID, struct{}{})
	return r.fallback.SetIntent(ctx, intent)
}

// ClearIntent clears both stores so an intent cannot resurface after recovery.
func (r *FailoverIntentStore) ClearIntent(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		if err := r.primary.ClearIntent(ctx, sessionID); err != nil {
			r.markDown(err)
		} else {
			r.stale.Delete(sessionID)
		}
	}
	if r.isDown.Load() {
		r.stale.Store(sessionID, struct{}{})
	}

	return r.fallback.ClearIntent(ctx, sessionID)
}

func (r *FailoverIntentStore) CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, sessionID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, sessionID, limit, window)
}

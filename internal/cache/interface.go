package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Tapedynamics/Twittich/internal/domain"
)

// ErrCacheMiss is returned when no active session is cached.
var ErrCacheMiss = errors.New("cache miss")

// SessionCache caches the currently active live session so the
// "what's live right now" endpoint does not hit the database on every
// poll.
type SessionCache interface {
	GetActive(ctx context.Context) (*domain.LiveSession, error)
	SetActive(ctx context.Context, session *domain.LiveSession, ttl time.Duration) error
	InvalidateActive(ctx context.Context) error
	Close() error
}

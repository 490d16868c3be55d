package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrSessionValueNotFound is returned when a session key holds no value.
var ErrSessionValueNotFound = errors.New("session value not found")

// SessionStore keeps short lived string values shared between editor requests:
// large field values posted by reference, runtime validation values, and
// serialized validator sets.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

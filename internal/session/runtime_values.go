package session

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const runtimeValuePrefix = "rtv:"

// RuntimeValues records the last normalised value submitted for each editor
// control so that client side re-validation can read it back.
type RuntimeValues struct {
	store interfaces.SessionStore
	scope string
	ttl   time.Duration
}

// NewRuntimeValues builds a recorder over store.
func NewRuntimeValues(store interfaces.SessionStore, ttl time.Duration) *RuntimeValues {
	return &RuntimeValues{store: store, ttl: ttl}
}

// Scoped returns a recorder whose keys are isolated to one editor session.
func (r *RuntimeValues) Scoped(sessionID string) *RuntimeValues {
	if r == nil {
		return nil
	}
	scoped := *r
	scoped.scope = strings.TrimSpace(sessionID)
	return &scoped
}

// Record stores value for controlID.
func (r *RuntimeValues) Record(ctx context.Context, controlID, value string) error {
	if r == nil || r.store == nil || controlID == "" {
		return nil
	}
	return r.store.Set(ctx, r.key(controlID), value, r.ttl)
}

// Lookup returns the last value recorded for controlID.
func (r *RuntimeValues) Lookup(ctx context.Context, controlID string) (string, error) {
	if r == nil || r.store == nil {
		return "", interfaces.ErrSessionValueNotFound
	}
	return r.store.Get(ctx, r.key(controlID))
}

func (r *RuntimeValues) key(controlID string) string {
	if r.scope == "" {
		return runtimeValuePrefix + controlID
	}
	return runtimeValuePrefix + r.scope + ":" + controlID
}

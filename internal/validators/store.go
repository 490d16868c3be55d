package validators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const keyPrefix = "validators:"

// Store persists validator sets under the key chosen by the editor so the
// validator bar can fetch them after the save round trip.
type Store struct {
	sessions interfaces.SessionStore
	ttl      time.Duration
}

// NewStore builds a store over sessions.
func NewStore(sessions interfaces.SessionStore, ttl time.Duration) *Store {
	return &Store{sessions: sessions, ttl: ttl}
}

// Save stamps set with key and writes it.
func (s *Store) Save(ctx context.Context, key string, set interfaces.ValidatorSet) (interfaces.ValidatorSet, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return set, nil
	}
	set.Key = key
	if s == nil || s.sessions == nil {
		return set, nil
	}
	if set.Validators == nil {
		set.Validators = []interfaces.Validator{}
	}
	payload, err := json.Marshal(set)
	if err != nil {
		return set, fmt.Errorf("validators: encode set: %w", err)
	}
	if err := s.sessions.Set(ctx, keyPrefix+key, string(payload), s.ttl); err != nil {
		return set, fmt.Errorf("validators: store set: %w", err)
	}
	return set, nil
}

// Load reads the set saved under key.
func (s *Store) Load(ctx context.Context, key string) (interfaces.ValidatorSet, error) {
	if s == nil || s.sessions == nil {
		return interfaces.ValidatorSet{}, interfaces.ErrSessionValueNotFound
	}
	raw, err := s.sessions.Get(ctx, keyPrefix+strings.TrimSpace(key))
	if err != nil {
		return interfaces.ValidatorSet{}, err
	}
	var set interfaces.ValidatorSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return interfaces.ValidatorSet{}, fmt.Errorf("validators: decode set: %w", err)
	}
	return set, nil
}

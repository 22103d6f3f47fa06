package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/basecampsupply/storefront-backend/pkg/config"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	redisclient "github.com/basecampsupply/storefront-backend/pkg/redis"
)

type cartStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(token string) string
}

// Store persists cart snapshots in Redis keyed by the caller's cart token.
// A missing key reads back as an empty cart.
type Store struct {
	store cartStore
	keyer cartKeyer
	ttl   time.Duration
}

// NewStore builds a cart store backed by Redis.
func NewStore(client *redisclient.Client, cfg config.CheckoutConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.CartTTL
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{store: client, keyer: client, ttl: ttl}, nil
}

// Load returns the cart stored under token, or an empty cart if none exists.
func (s *Store) Load(ctx context.Context, token string) (State, error) {
	raw, err := s.store.Get(ctx, s.keyer.CartKey(token))
	if errors.Is(err, redisclient.ErrNotFound) {
		return EmptyState(), nil
	}
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cart")
	}
	// recompute rather than trusting the stored total
	return rebuild(state.Lines), nil
}

// Save writes the snapshot under token, refreshing its TTL.
func (s *Store) Save(ctx context.Context, token string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.store.Set(ctx, s.keyer.CartKey(token), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

// Drop deletes the cart stored under token. Deleting an absent cart is fine.
func (s *Store) Drop(ctx context.Context, token string) error {
	if err := s.store.Del(ctx, s.keyer.CartKey(token)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dropping cart")
	}
	return nil
}

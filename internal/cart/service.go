package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
)

// Snapshotter exposes the read-only cart surface other services need.
type Snapshotter interface {
	Get(ctx context.Context, token string) (State, error)
	Clear(ctx context.Context, token string) (State, error)
}

// Service exposes cart mutations over the persisted snapshot.
type Service interface {
	Get(ctx context.Context, token string) (State, error)
	AddLine(ctx context.Context, token string, line Line) (State, error)
	RemoveLine(ctx context.Context, token string, productID string) (State, error)
	SetQuantity(ctx context.Context, token string, productID string, quantity int) (State, error)
	Clear(ctx context.Context, token string) (State, error)
}

type service struct {
	store *Store
}

// NewService builds a cart service backed by the provided store.
func NewService(store *Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store}, nil
}

func (s *service) Get(ctx context.Context, token string) (State, error) {
	if err := validateToken(token); err != nil {
		return State{}, err
	}
	return s.store.Load(ctx, token)
}

func (s *service) AddLine(ctx context.Context, token string, line Line) (State, error) {
	if err := validateToken(token); err != nil {
		return State{}, err
	}
	if strings.TrimSpace(line.ProductID) == "" {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.UnitPrice.IsNegative() {
		return State{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	return s.mutate(ctx, token, func(state State) State {
		return AddLine(state, line)
	})
}

func (s *service) RemoveLine(ctx context.Context, token string, productID string) (State, error) {
	if err := validateToken(token); err != nil {
		return State{}, err
	}
	return s.mutate(ctx, token, func(state State) State {
		return RemoveLine(state, productID)
	})
}

func (s *service) SetQuantity(ctx context.Context, token string, productID string, quantity int) (State, error) {
	if err := validateToken(token); err != nil {
		return State{}, err
	}
	return s.mutate(ctx, token, func(state State) State {
		return SetQuantity(state, productID, quantity)
	})
}

func (s *service) Clear(ctx context.Context, token string) (State, error) {
	if err := validateToken(token); err != nil {
		return State{}, err
	}
	if err := s.store.Drop(ctx, token); err != nil {
		return State{}, err
	}
	return EmptyState(), nil
}

func (s *service) mutate(ctx context.Context, token string, fn func(State) State) (State, error) {
	state, err := s.store.Load(ctx, token)
	if err != nil {
		return State{}, err
	}
	next := fn(state)
	if err := s.store.Save(ctx, token, next); err != nil {
		return State{}, err
	}
	return next, nil
}

func validateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	return nil
}

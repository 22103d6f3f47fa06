package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgdb "github.com/basecampsupply/storefront-backend/pkg/db"
	"github.com/basecampsupply/storefront-backend/pkg/db/models"
	"github.com/basecampsupply/storefront-backend/pkg/enums"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/basecampsupply/storefront-backend/pkg/metrics"
	"github.com/basecampsupply/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const stripeSessionConstraint = "orders_stripe_session_id_key"

// ReconcileInput carries the snapshot persisted when a checkout completes.
type ReconcileInput struct {
	UserID          uuid.UUID
	StripeSessionID string
	Total           decimal.Decimal
	Items           types.OrderItems
}

// ReconcileResult pairs the durable order with whether this call created it.
type ReconcileResult struct {
	Order   *models.Order
	Created bool
}

// Service defines order reconciliation and reads.
type Service interface {
	Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo    Repository
	metrics *metrics.CheckoutMetrics
}

// NewService builds the order reconciliation service.
func NewService(repo Repository, m *metrics.CheckoutMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, metrics: m}, nil
}

// Reconcile persists the order for a completed payment session exactly once.
// The insert is optimistic: the unique index on stripe_session_id is the only
// arbiter under concurrent submissions, and losing the race falls back to
// reading the winner's row. Either way the caller gets the same order back.
func (s *service) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error) {
	sessionID := strings.TrimSpace(input.StripeSessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment session id is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	existing, err := s.repo.FindByStripeSessionID(ctx, sessionID)
	if err == nil {
		s.metrics.IncOrderReconciled(metrics.OutcomeReplay)
		return &ReconcileResult{Order: existing, Created: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.IncOrderReconciled(metrics.OutcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up order")
	}

	order := &models.Order{
		StripeSessionID: sessionID,
		UserID:          input.UserID,
		Status:          enums.OrderStatusCompleted,
		Total:           input.Total,
		Items:           input.Items,
	}
	created, err := s.repo.Create(ctx, order)
	if err == nil {
		s.metrics.IncOrderReconciled(metrics.OutcomeCreated)
		return &ReconcileResult{Order: created, Created: true}, nil
	}

	if pkgdb.IsUniqueViolation(err, stripeSessionConstraint) {
		winner, findErr := s.repo.FindByStripeSessionID(ctx, sessionID)
		if findErr != nil {
			s.metrics.IncOrderReconciled(metrics.OutcomeError)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reading order after duplicate insert")
		}
		s.metrics.IncOrderReconciled(metrics.OutcomeReplay)
		return &ReconcileResult{Order: winner, Created: false}, nil
	}

	s.metrics.IncOrderReconciled(metrics.OutcomeError)
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return orders, nil
}

package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/basecampsupply/storefront-backend/internal/cart"
	"github.com/basecampsupply/storefront-backend/internal/orders"
	"github.com/basecampsupply/storefront-backend/pkg/config"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/basecampsupply/storefront-backend/pkg/metrics"
	"github.com/basecampsupply/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// sessionIDPlaceholder is substituted by the payment provider on redirect.
const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

type paymentClient interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type orderReconciler interface {
	Reconcile(ctx context.Context, input orders.ReconcileInput) (*orders.ReconcileResult, error)
}

// BeginResult carries the provider session handle back to the client.
type BeginResult struct {
	SessionID   string
	RedirectURL string
}

// ConfirmResult reports what the return-redirect handler did.
type ConfirmResult struct {
	Order   *orders.ReconcileResult
	Cleared bool
}

// Service turns a cart into a hosted payment session and reconciles the
// resulting order when the shopper returns.
type Service interface {
	BeginCheckout(ctx context.Context, token string, userID uuid.UUID) (*BeginResult, error)
	ConfirmCheckout(ctx context.Context, token string, userID uuid.UUID, sessionID string) (*ConfirmResult, error)
}

type service struct {
	carts      cart.Snapshotter
	payments   paymentClient
	reconciler orderReconciler
	cfg        config.CheckoutConfig
	metrics    *metrics.CheckoutMetrics
}

// NewService builds a checkout service from the cart, payment, and order layers.
func NewService(carts cart.Snapshotter, payments paymentClient, reconciler orderReconciler, cfg config.CheckoutConfig, m *metrics.CheckoutMetrics) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart snapshotter required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("order reconciler required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("checkout redirect urls required")
	}
	if cfg.Currency == "" {
		return nil, fmt.Errorf("checkout currency required")
	}
	return &service{
		carts:      carts,
		payments:   payments,
		reconciler: reconciler,
		cfg:        cfg,
		metrics:    m,
	}, nil
}

// BeginCheckout creates a one-shot payment session for the cart under token.
// An empty cart is rejected before any provider call is made.
func (s *service) BeginCheckout(ctx context.Context, token string, userID uuid.UUID) (*BeginResult, error) {
	state, err := s.carts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		s.metrics.IncSessionBegun(metrics.ResultEmptyCart)
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot begin checkout with an empty cart")
	}

	params := s.buildSessionParams(state, userID)
	start := time.Now()
	session, err := s.payments.CreateCheckoutSession(ctx, params)
	s.metrics.ObserveProviderCall("create_session", time.Since(start))
	if err != nil {
		s.metrics.IncSessionBegun(metrics.ResultError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment session")
	}
	if session == nil || session.URL == "" {
		s.metrics.IncSessionBegun(metrics.ResultError)
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment provider returned no redirect url")
	}

	s.metrics.IncSessionBegun(metrics.ResultOK)
	return &BeginResult{SessionID: session.ID, RedirectURL: session.URL}, nil
}

// ConfirmCheckout handles the shopper's return from the payment provider.
// With a session id it reconciles the order and clears the cart; without one
// (direct navigation to the success page) it only clears the cart.
func (s *service) ConfirmCheckout(ctx context.Context, token string, userID uuid.UUID, sessionID string) (*ConfirmResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		if _, err := s.carts.Clear(ctx, token); err != nil {
			return nil, err
		}
		return &ConfirmResult{Cleared: true}, nil
	}

	state, err := s.carts.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	result, err := s.reconciler.Reconcile(ctx, orders.ReconcileInput{
		UserID:          userID,
		StripeSessionID: sessionID,
		Total:           state.Total,
		Items:           snapshotItems(state),
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.carts.Clear(ctx, token); err != nil {
		return nil, err
	}
	return &ConfirmResult{Order: result, Cleared: true}, nil
}

func (s *service) buildSessionParams(state cart.State, userID uuid.UUID) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(state.Lines))
	for _, line := range state.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Title),
		}
		if line.Image != "" {
			product.Images = stripe.StringSlice([]string{line.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.cfg.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(toMinorUnits(line.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURLWithSession(s.cfg.SuccessURL)),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	if userID != uuid.Nil {
		params.ClientReferenceID = stripe.String(userID.String())
	}
	return params
}

// toMinorUnits converts a decimal amount to integer cents, rounding halves
// away from zero (49.995 becomes 5000).
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func successURLWithSession(base string) string {
	if strings.Contains(base, sessionIDPlaceholder) {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "session_id=" + sessionIDPlaceholder
}

func snapshotItems(state cart.State) types.OrderItems {
	items := make(types.OrderItems, 0, len(state.Lines))
	for _, line := range state.Lines {
		items = append(items, types.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Image:     line.Image,
			ImageAlt:  line.ImageAlt,
		})
	}
	return items
}

package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/basecampsupply/storefront-backend/internal/cart"
	"github.com/basecampsupply/storefront-backend/internal/orders"
	"github.com/basecampsupply/storefront-backend/pkg/config"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubCarts struct {
	state  cart.State
	clears int
}

func (s *stubCarts) Get(ctx context.Context, token string) (cart.State, error) {
	return s.state, nil
}

func (s *stubCarts) Clear(ctx context.Context, token string) (cart.State, error) {
	s.clears++
	s.state = cart.EmptyState()
	return s.state, nil
}

type stubPayments struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
	calls   int
}

func (s *stubPayments) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.calls++
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type stubReconciler struct {
	input orders.ReconcileInput
	err   error
	calls int
}

func (s *stubReconciler) Reconcile(ctx context.Context, input orders.ReconcileInput) (*orders.ReconcileResult, error) {
	s.calls++
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.ReconcileResult{Created: true}, nil
}

func testConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		SuccessURL: "http://localhost:3000/checkout/success",
		CancelURL:  "http://localhost:3000",
		Currency:   "usd",
	}
}

func twoLineCart() cart.State {
	state := cart.AddLine(cart.EmptyState(), cart.Line{
		ProductID: "prod_1",
		VariantID: "var_1",
		Title:     "Trail Hoodie",
		UnitPrice: decimal.NewFromFloat(49.99),
	})
	state = cart.SetQuantity(state, "prod_1", 2)
	return cart.AddLine(state, cart.Line{
		ProductID: "prod_2",
		VariantID: "var_2",
		Title:     "Steel Bottle",
		UnitPrice: decimal.NewFromFloat(18.50),
	})
}

func newTestService(t *testing.T, carts *stubCarts, payments *stubPayments, reconciler *stubReconciler) Service {
	t.Helper()
	svc, err := NewService(carts, payments, reconciler, testConfig(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestBeginCheckoutRejectsEmptyCartWithoutProviderCall(t *testing.T) {
	payments := &stubPayments{}
	svc := newTestService(t, &stubCarts{state: cart.EmptyState()}, payments, &stubReconciler{})

	_, err := svc.BeginCheckout(context.Background(), "tok-1", uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
	if payments.calls != 0 {
		t.Fatalf("expected no provider call, got %d", payments.calls)
	}
}

func TestBeginCheckoutBuildsSessionFromCart(t *testing.T) {
	payments := &stubPayments{session: &stripe.CheckoutSession{ID: "cs_test_abc", URL: "https://checkout.stripe.com/pay/cs_test_abc"}}
	svc := newTestService(t, &stubCarts{state: twoLineCart()}, payments, &stubReconciler{})

	result, err := svc.BeginCheckout(context.Background(), "tok-1", uuid.New())
	if err != nil {
		t.Fatalf("begin checkout: %v", err)
	}
	if result.SessionID != "cs_test_abc" {
		t.Fatalf("unexpected session id %q", result.SessionID)
	}
	if result.RedirectURL != "https://checkout.stripe.com/pay/cs_test_abc" {
		t.Fatalf("unexpected redirect url %q", result.RedirectURL)
	}

	params := payments.params
	if got := stripe.StringValue(params.Mode); got != string(stripe.CheckoutSessionModePayment) {
		t.Fatalf("expected payment mode, got %q", got)
	}
	if len(params.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(params.LineItems))
	}
	if got := stripe.Int64Value(params.LineItems[0].PriceData.UnitAmount); got != 4999 {
		t.Fatalf("expected 4999 cents, got %d", got)
	}
	if got := stripe.Int64Value(params.LineItems[0].Quantity); got != 2 {
		t.Fatalf("expected quantity 2, got %d", got)
	}
	if got := stripe.StringValue(params.LineItems[0].PriceData.Currency); got != "usd" {
		t.Fatalf("expected usd currency, got %q", got)
	}

	successURL := stripe.StringValue(params.SuccessURL)
	if !strings.Contains(successURL, "session_id={CHECKOUT_SESSION_ID}") {
		t.Fatalf("success url missing session placeholder: %q", successURL)
	}
}

func TestBeginCheckoutRoundsHalfAwayFromZero(t *testing.T) {
	state := cart.AddLine(cart.EmptyState(), cart.Line{
		ProductID: "prod_1",
		VariantID: "var_1",
		Title:     "Sticker",
		UnitPrice: decimal.NewFromFloat(10.005),
	})
	payments := &stubPayments{session: &stripe.CheckoutSession{ID: "cs", URL: "https://example.com"}}
	svc := newTestService(t, &stubCarts{state: state}, payments, &stubReconciler{})

	if _, err := svc.BeginCheckout(context.Background(), "tok-1", uuid.New()); err != nil {
		t.Fatalf("begin checkout: %v", err)
	}
	if got := stripe.Int64Value(payments.params.LineItems[0].PriceData.UnitAmount); got != 1001 {
		t.Fatalf("expected 1001 cents, got %d", got)
	}
}

func TestBeginCheckoutWrapsProviderFailure(t *testing.T) {
	payments := &stubPayments{err: errors.New("stripe: upstream timeout")}
	svc := newTestService(t, &stubCarts{state: twoLineCart()}, payments, &stubReconciler{})

	_, err := svc.BeginCheckout(context.Background(), "tok-1", uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestConfirmCheckoutReconcilesAndClearsCart(t *testing.T) {
	carts := &stubCarts{state: twoLineCart()}
	reconciler := &stubReconciler{}
	svc := newTestService(t, carts, &stubPayments{}, reconciler)
	userID := uuid.New()

	result, err := svc.ConfirmCheckout(context.Background(), "tok-1", userID, "cs_test_abc")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Order == nil || !result.Cleared {
		t.Fatalf("expected reconciled order and cleared cart, got %+v", result)
	}
	if reconciler.input.StripeSessionID != "cs_test_abc" {
		t.Fatalf("unexpected session id %q", reconciler.input.StripeSessionID)
	}
	if reconciler.input.UserID != userID {
		t.Fatalf("unexpected user id %s", reconciler.input.UserID)
	}
	if len(reconciler.input.Items) != 2 {
		t.Fatalf("expected 2 snapshot items, got %d", len(reconciler.input.Items))
	}
	if carts.clears != 1 {
		t.Fatalf("expected cart cleared once, got %d", carts.clears)
	}
}

func TestConfirmCheckoutWithoutSessionOnlyClearsCart(t *testing.T) {
	carts := &stubCarts{state: twoLineCart()}
	reconciler := &stubReconciler{}
	svc := newTestService(t, carts, &stubPayments{}, reconciler)

	result, err := svc.ConfirmCheckout(context.Background(), "tok-1", uuid.New(), "  ")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Order != nil {
		t.Fatal("expected no order without a session id")
	}
	if !result.Cleared || carts.clears != 1 {
		t.Fatalf("expected cart cleared, got %+v (clears=%d)", result, carts.clears)
	}
	if reconciler.calls != 0 {
		t.Fatalf("expected no reconcile call, got %d", reconciler.calls)
	}
}

func TestConfirmCheckoutKeepsCartWhenReconcileFails(t *testing.T) {
	carts := &stubCarts{state: twoLineCart()}
	reconciler := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	svc := newTestService(t, carts, &stubPayments{}, reconciler)

	_, err := svc.ConfirmCheckout(context.Background(), "tok-1", uuid.New(), "cs_test_abc")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if carts.clears != 0 {
		t.Fatalf("expected cart untouched on failure, got %d clears", carts.clears)
	}
}

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"49.99", 4999},
		{"18.50", 1850},
		{"0", 0},
		{"10.005", 1001},
		{"10.004", 1000},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.amount, err)
		}
		if got := toMinorUnits(amount); got != tc.want {
			t.Fatalf("toMinorUnits(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

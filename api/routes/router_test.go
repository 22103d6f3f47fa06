package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/basecampsupply/storefront-backend/internal/auth"
	"github.com/basecampsupply/storefront-backend/internal/cart"
	"github.com/basecampsupply/storefront-backend/internal/checkout"
	"github.com/basecampsupply/storefront-backend/internal/orders"
	pkgAuth "github.com/basecampsupply/storefront-backend/pkg/auth"
	"github.com/basecampsupply/storefront-backend/pkg/auth/session"
	"github.com/basecampsupply/storefront-backend/pkg/config"
	"github.com/basecampsupply/storefront-backend/pkg/db/models"
	"github.com/basecampsupply/storefront-backend/pkg/logger"
	"github.com/basecampsupply/storefront-backend/pkg/redis"
)

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, token string) (cart.State, error) {
	return cart.EmptyState(), nil
}

func (stubCartService) AddLine(ctx context.Context, token string, line cart.Line) (cart.State, error) {
	return cart.EmptyState(), nil
}

func (stubCartService) RemoveLine(ctx context.Context, token string, productID string) (cart.State, error) {
	return cart.EmptyState(), nil
}

func (stubCartService) SetQuantity(ctx context.Context, token string, productID string, quantity int) (cart.State, error) {
	return cart.EmptyState(), nil
}

func (stubCartService) Clear(ctx context.Context, token string) (cart.State, error) {
	return cart.EmptyState(), nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) BeginCheckout(ctx context.Context, token string, userID uuid.UUID) (*checkout.BeginResult, error) {
	return &checkout.BeginResult{SessionID: "cs_test", RedirectURL: "https://example.test/pay"}, nil
}

func (stubCheckoutService) ConfirmCheckout(ctx context.Context, token string, userID uuid.UUID, sessionID string) (*checkout.ConfirmResult, error) {
	return &checkout.ConfirmResult{Cleared: true}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Reconcile(ctx context.Context, input orders.ReconcileInput) (*orders.ReconcileResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubOrdersService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		(*redis.Client)(nil),
		stubSessionChecker{},
		stubAuthService{},
		stubCartService{},
		stubCheckoutService{},
		stubOrdersService{},
		nil,
	)
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "buyer@example.com",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Basecamp-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Basecamp-Env"))
	}
}

func TestCartRoutesSkipAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without token got %d", resp.Code)
	}
	if resp.Header().Get("X-Cart-Token") == "" {
		t.Fatal("expected a minted cart token header")
	}
}

func TestCheckoutRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCheckoutSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

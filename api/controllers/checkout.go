package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/basecampsupply/storefront-backend/api/middleware"
	"github.com/basecampsupply/storefront-backend/api/responses"
	checkoutsvc "github.com/basecampsupply/storefront-backend/internal/checkout"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/basecampsupply/storefront-backend/pkg/logger"
)

// CheckoutBegin snapshots the cart into a hosted payment session and returns
// the redirect URL. An empty cart is rejected before any provider call.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		result, err := svc.BeginCheckout(r.Context(), token, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, beginCheckoutResponse{
			SessionID:   result.SessionID,
			RedirectURL: result.RedirectURL,
		})
	}
}

// CheckoutConfirm handles the shopper's return from the payment provider.
// With a session_id it reconciles the order and clears the cart; without one
// it only clears the cart.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		token := middleware.CartTokenFromContext(r.Context())
		result, err := svc.ConfirmCheckout(r.Context(), token, userID, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := confirmCheckoutResponse{Cleared: result.Cleared}
		if result.Order != nil {
			resp.Order = newOrderResponse(result.Order.Order)
			resp.Created = result.Order.Created
		}
		responses.WriteSuccess(w, resp)
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

type beginCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

type confirmCheckoutResponse struct {
	Order   *orderResponse `json:"order,omitempty"`
	Created bool           `json:"created"`
	Cleared bool           `json:"cleared"`
}

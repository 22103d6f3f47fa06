package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/basecampsupply/storefront-backend/api/responses"
	ordersvc "github.com/basecampsupply/storefront-backend/internal/orders"
	"github.com/basecampsupply/storefront-backend/pkg/db/models"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/basecampsupply/storefront-backend/pkg/logger"
	"github.com/basecampsupply/storefront-backend/pkg/types"
)

// OrdersList returns the caller's orders, newest first.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orderResponse, 0, len(orders))
		for i := range orders {
			items = append(items, *newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, ordersListResponse{Orders: items})
	}
}

type ordersListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type orderResponse struct {
	ID              uuid.UUID        `json:"id"`
	StripeSessionID string           `json:"stripe_session_id"`
	Status          string           `json:"status"`
	Total           decimal.Decimal  `json:"total"`
	Items           types.OrderItems `json:"items"`
	CreatedAt       time.Time        `json:"created_at"`
}

func newOrderResponse(order *models.Order) *orderResponse {
	if order == nil {
		return nil
	}
	return &orderResponse{
		ID:              order.ID,
		StripeSessionID: order.StripeSessionID,
		Status:          string(order.Status),
		Total:           order.Total,
		Items:           order.Items,
		CreatedAt:       order.CreatedAt,
	}
}

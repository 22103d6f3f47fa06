package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/basecampsupply/storefront-backend/api/middleware"
	"github.com/basecampsupply/storefront-backend/api/responses"
	"github.com/basecampsupply/storefront-backend/api/validators"
	cartsvc "github.com/basecampsupply/storefront-backend/internal/cart"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/basecampsupply/storefront-backend/pkg/logger"
)

// CartGet returns the caller's current cart snapshot.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		state, err := svc.Get(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(token, state))
	}
}

// CartAddLine merges a line into the cart, adding one unit when the product
// is already present. The request's quantity, if any, is ignored.
func CartAddLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		state, err := svc.AddLine(r.Context(), token, payload.toLine())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(token, state))
	}
}

// CartSetQuantity replaces the quantity for a product. A quantity of zero or
// below removes the line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productID")
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		state, err := svc.SetQuantity(r.Context(), token, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(token, state))
	}
}

// CartRemoveLine drops a product's line from the cart.
func CartRemoveLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		productID := chi.URLParam(r, "productID")
		token := middleware.CartTokenFromContext(r.Context())
		state, err := svc.RemoveLine(r.Context(), token, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(token, state))
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		token := middleware.CartTokenFromContext(r.Context())
		state, err := svc.Clear(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(token, state))
	}
}

type addLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id"`
	Title     string          `json:"title" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	ImageAlt  string          `json:"image_alt"`
	// accepted for wire compatibility, never applied: merges add one unit,
	// fresh lines start at one
	Quantity int `json:"quantity"`
}

func (r addLineRequest) toLine() cartsvc.Line {
	return cartsvc.Line{
		ProductID: r.ProductID,
		VariantID: r.VariantID,
		Title:     r.Title,
		UnitPrice: r.UnitPrice,
		Image:     r.Image,
		ImageAlt:  r.ImageAlt,
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Token string          `json:"token"`
	Lines []cartsvc.Line  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func newCartResponse(token string, state cartsvc.State) cartResponse {
	lines := state.Lines
	if lines == nil {
		lines = []cartsvc.Line{}
	}
	return cartResponse{Token: token, Lines: lines, Total: state.Total}
}

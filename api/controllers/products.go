package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/basecampsupply/storefront-backend/api/responses"
	"github.com/basecampsupply/storefront-backend/api/validators"
	"github.com/basecampsupply/storefront-backend/internal/catalog"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/basecampsupply/storefront-backend/pkg/logger"
)

// ProductsList proxies the storefront catalog listing.
func ProductsList(client *catalog.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		first, err := validators.ParseQueryInt(r, "first", 20, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := client.ListProducts(r.Context(), first)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsListResponse{Products: products})
	}
}

// ProductGet fetches a single product by its storefront handle.
func ProductGet(client *catalog.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		handle := chi.URLParam(r, "handle")
		product, err := client.GetProductByHandle(r.Context(), handle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// CollectionProducts lists the products in a storefront collection.
func CollectionProducts(client *catalog.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog client unavailable"))
			return
		}

		first, err := validators.ParseQueryInt(r, "first", 20, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		handle := chi.URLParam(r, "handle")
		products, err := client.ListCollectionProducts(r.Context(), handle, first)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productsListResponse{Products: products})
	}
}

type productsListResponse struct {
	Products []catalog.Product `json:"products"`
}

package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/basecampsupply/storefront-backend/pkg/config"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testShopifyConfig() config.ShopifyConfig {
	return config.ShopifyConfig{
		StoreDomain: "basecamp-supply.myshopify.com",
		AccessToken: "test-token",
		APIVersion:  "2024-10",
	}
}

func newCatalogClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(testShopifyConfig(),
		WithEndpoint("http://shop.test/graphql.json"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

const listProductsBody = `{"data":{"products":{"edges":[{"node":{
  "id":"gid://shopify/Product/1",
  "handle":"trail-hoodie",
  "title":"Trail Hoodie",
  "description":"Warm fleece hoodie",
  "featuredImage":{"url":"https://cdn.test/hoodie.jpg","altText":"Hoodie"},
  "variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/11","title":"M","availableForSale":true,"price":{"amount":"49.99"}}}]}
}}]}}}`

func TestListProductsRequestAndMapping(t *testing.T) {
	var capturedURL string
	var capturedHeaders http.Header
	var capturedVariables map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if !strings.Contains(payload.Query, "products(first: $first)") {
			t.Fatalf("unexpected query %q", payload.Query)
		}
		capturedVariables = payload.Variables

		return jsonResponse(http.StatusOK, listProductsBody), nil
	})

	client := newCatalogClient(t, rt)
	products, err := client.ListProducts(context.Background(), 10)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}

	if capturedURL != "http://shop.test/graphql.json" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Shopify-Storefront-Access-Token") != "test-token" {
		t.Fatal("storefront token header missing")
	}
	if got := capturedVariables["first"]; got != float64(10) {
		t.Fatalf("unexpected first variable %v", got)
	}

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	product := products[0]
	if product.Handle != "trail-hoodie" || product.Image != "https://cdn.test/hoodie.jpg" {
		t.Fatalf("unexpected product %+v", product)
	}
	if len(product.Variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(product.Variants))
	}
	if !product.Variants[0].Price.Equal(decimal.NewFromFloat(49.99)) {
		t.Fatalf("unexpected price %s", product.Variants[0].Price)
	}
	if !product.Variants[0].Available {
		t.Fatal("expected variant available")
	}
}

func TestGetProductByHandleNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"product":null}}`), nil
	})

	client := newCatalogClient(t, rt)
	_, err := client.GetProductByHandle(context.Background(), "missing-handle")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProductByHandleRejectsEmptyHandle(t *testing.T) {
	client := newCatalogClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("unexpected request")
		return nil, nil
	})

	_, err := client.GetProductByHandle(context.Background(), "  ")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteSurfacesGraphQLErrors(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"errors":[{"message":"throttled"}]}`), nil
	})

	client := newCatalogClient(t, rt)
	_, err := client.ListProducts(context.Background(), 5)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "graphql query rejected") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestExecuteSurfacesHTTPFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `upstream down`), nil
	})

	client := newCatalogClient(t, rt)
	_, err := client.ListProducts(context.Background(), 5)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

const collectionProductsBody = `{"data":{"collection":{"products":{"edges":[{"node":{
  "id":"gid://shopify/Product/2",
  "handle":"summit-bottle",
  "title":"Summit Bottle",
  "description":"Insulated bottle",
  "variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/21","title":"1L","availableForSale":true,"price":{"amount":"24.00"}}}]}
}}]}}}}`

func TestListCollectionProducts(t *testing.T) {
	var capturedVariables map[string]any
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if !strings.Contains(payload.Query, "collection(handle: $handle)") {
			t.Fatalf("unexpected query %q", payload.Query)
		}
		capturedVariables = payload.Variables
		return jsonResponse(http.StatusOK, collectionProductsBody), nil
	})

	client := newCatalogClient(t, rt)
	products, err := client.ListCollectionProducts(context.Background(), "camp-kitchen", 10)
	if err != nil {
		t.Fatalf("list collection products: %v", err)
	}

	if got := capturedVariables["handle"]; got != "camp-kitchen" {
		t.Fatalf("unexpected handle variable %v", got)
	}
	if len(products) != 1 || products[0].Handle != "summit-bottle" {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestListCollectionProductsNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"collection":null}}`), nil
	})

	client := newCatalogClient(t, rt)
	_, err := client.ListCollectionProducts(context.Background(), "missing", 10)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestListCollectionProductsRejectsEmptyHandle(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatal("transport should not be called")
		return nil, nil
	})

	client := newCatalogClient(t, rt)
	_, err := client.ListCollectionProducts(context.Background(), "  ", 10)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/basecampsupply/storefront-backend/pkg/config"
	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultAPIVersion           = "2024-10"
	requestBodyReadLimit  int64 = 1024
	defaultProductPageMax       = 50
)

var (
	errStoreDomainRequired = errors.New("shopify store domain is required")
	errAccessTokenRequired = errors.New("shopify storefront token is required")
)

// Client wraps the Shopify Storefront GraphQL API used for product reads.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoint overrides the derived GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(endpoint)
		if trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

// NewClient builds the Storefront client from the configured shop credentials.
func NewClient(cfg config.ShopifyConfig, opts ...Option) (*Client, error) {
	domain := strings.TrimSpace(cfg.StoreDomain)
	if domain == "" {
		return nil, errStoreDomainRequired
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}

	client := &Client{
		accessToken: token,
		endpoint:    fmt.Sprintf("https://%s/api/%s/graphql.json", domain, version),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return client, nil
}

// Variant is a purchasable option of a product.
type Variant struct {
	ID        string
	Title     string
	Price     decimal.Decimal
	Available bool
}

// Product is the storefront-facing catalog entry.
type Product struct {
	ID          string
	Handle      string
	Title       string
	Description string
	Image       string
	ImageAlt    string
	Variants    []Variant
}

const productFields = `
id
handle
title
description
featuredImage { url altText }
variants(first: 20) {
  edges {
    node {
      id
      title
      availableForSale
      price { amount }
    }
  }
}`

// ListProducts fetches up to first products from the catalog.
func (c *Client) ListProducts(ctx context.Context, first int) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	if first <= 0 || first > defaultProductPageMax {
		first = defaultProductPageMax
	}

	query := fmt.Sprintf(`query ListProducts($first: Int!) { products(first: $first) { edges { node { %s } } } }`, productFields)
	var payload struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.execute(ctx, query, map[string]any{"first": first}, &payload); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(payload.Products.Edges))
	for _, edge := range payload.Products.Edges {
		product, err := edge.Node.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// GetProductByHandle fetches a single product by its URL handle.
func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product handle is required")
	}

	query := fmt.Sprintf(`query ProductByHandle($handle: String!) { product(handle: $handle) { %s } }`, productFields)
	var payload struct {
		Product *productNode `json:"product"`
	}
	if err := c.execute(ctx, query, map[string]any{"handle": trimmed}, &payload); err != nil {
		return nil, err
	}
	if payload.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	product, err := payload.Product.toProduct()
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListCollectionProducts fetches up to first products from a collection.
func (c *Client) ListCollectionProducts(ctx context.Context, handle string, first int) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection handle is required")
	}
	if first <= 0 || first > defaultProductPageMax {
		first = defaultProductPageMax
	}

	query := fmt.Sprintf(`query CollectionProducts($handle: String!, $first: Int!) { collection(handle: $handle) { products(first: $first) { edges { node { %s } } } } }`, productFields)
	var payload struct {
		Collection *struct {
			Products struct {
				Edges []struct {
					Node productNode `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"collection"`
	}
	if err := c.execute(ctx, query, map[string]any{"handle": trimmed, "first": first}, &payload); err != nil {
		return nil, err
	}
	if payload.Collection == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
	}

	products := make([]Product, 0, len(payload.Collection.Products.Edges))
	for _, edge := range payload.Collection.Products.Edges {
		product, err := edge.Node.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

type productNode struct {
	ID            string `json:"id"`
	Handle        string `json:"handle"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	FeaturedImage *struct {
		URL     string `json:"url"`
		AltText string `json:"altText"`
	} `json:"featuredImage"`
	Variants struct {
		Edges []struct {
			Node struct {
				ID               string `json:"id"`
				Title            string `json:"title"`
				AvailableForSale bool   `json:"availableForSale"`
				Price            struct {
					Amount string `json:"amount"`
				} `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

func (n productNode) toProduct() (Product, error) {
	product := Product{
		ID:          n.ID,
		Handle:      n.Handle,
		Title:       n.Title,
		Description: n.Description,
	}
	if n.FeaturedImage != nil {
		product.Image = n.FeaturedImage.URL
		product.ImageAlt = n.FeaturedImage.AltText
	}
	for _, edge := range n.Variants.Edges {
		price, err := decimal.NewFromString(edge.Node.Price.Amount)
		if err != nil {
			return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse variant price")
		}
		product.Variants = append(product.Variants, Variant{
			ID:        edge.Node.ID,
			Title:     edge.Node.Title,
			Price:     price,
			Available: edge.Node.AvailableForSale,
		})
	}
	return product, nil
}

func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal graphql request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build graphql request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute graphql request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "graphql request failed")
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode graphql response")
	}
	if len(envelope.Errors) > 0 {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("graphql: %s", envelope.Errors[0].Message), "graphql query rejected")
	}
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "graphql response missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode graphql data")
	}
	return nil
}

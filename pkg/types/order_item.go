package types

import "github.com/shopspring/decimal"

// OrderItem is the serialized snapshot of one cart line at checkout time.
// The snapshot is stored verbatim on the order so later catalog changes
// (price, title, imagery) never rewrite purchase history.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	ImageAlt  string          `json:"image_alt,omitempty"`
}

// OrderItems is persisted as a jsonb column via GORM's json serializer.
type OrderItems []OrderItem

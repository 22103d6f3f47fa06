package models

import (
	"time"

	"github.com/basecampsupply/storefront-backend/pkg/enums"
	"github.com/basecampsupply/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the durable record of a completed purchase. StripeSessionID is
// the idempotency key: the unique index is what guards against double order
// creation from duplicate success-page loads, not any application lock.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeSessionID string            `gorm:"column:stripe_session_id;type:text;not null;uniqueIndex:orders_stripe_session_id_key"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Items           types.OrderItems  `gorm:"column:items;type:jsonb;serializer:json;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

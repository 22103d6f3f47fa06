package enums

// OrderStatus tracks the lifecycle of a persisted order. Orders are written
// once after a successful payment redirect and never mutated afterwards, so
// "completed" is the only status this service assigns.
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderStatusCompleted
}

func (s OrderStatus) String() string {
	return string(s)
}

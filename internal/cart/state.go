package cart

import (
	"github.com/shopspring/decimal"
)

// Line is a single cart entry. Lines are keyed by ProductID: adding a
// product that is already present increments its quantity instead of
// appending a second line.
type Line struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	ImageAlt  string          `json:"image_alt,omitempty"`
}

// State is the full cart snapshot. Total is always recomputed from Lines,
// never adjusted incrementally.
type State struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// EmptyState returns a cart with no lines and a zero total.
func EmptyState() State {
	return State{Lines: nil, Total: decimal.Zero}
}

// IsEmpty reports whether the cart holds no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// AddLine merges the line into the cart. An existing line with the same
// product gains exactly one unit and keeps its stored attributes; otherwise
// the line is appended with quantity one. The candidate's quantity is never
// trusted.
func AddLine(s State, line Line) State {
	lines := cloneLines(s.Lines)
	merged := false
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		line.Quantity = 1
		lines = append(lines, line)
	}
	return rebuild(lines)
}

// RemoveLine drops the line with the given product. Removing a product the
// cart does not hold is a no-op.
func RemoveLine(s State, productID string) State {
	lines := make([]Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.ProductID == productID {
			continue
		}
		lines = append(lines, l)
	}
	return rebuild(lines)
}

// SetQuantity replaces the quantity on the matching line. A quantity of zero
// or less removes the line entirely. Unknown products are a no-op.
func SetQuantity(s State, productID string, quantity int) State {
	if quantity <= 0 {
		return RemoveLine(s, productID)
	}
	lines := cloneLines(s.Lines)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			break
		}
	}
	return rebuild(lines)
}

// Clear resets the cart to its empty state.
func Clear(State) State {
	return EmptyState()
}

// Subtotal returns unit price times quantity for a single line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func rebuild(lines []Line) State {
	if len(lines) == 0 {
		return EmptyState()
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return State{Lines: lines, Total: total}
}

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Package cart is the in-progress order ledger. A Cart is a value: every
// operation returns a new Cart and leaves the receiver untouched.
package cart

import (
	"strings"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/money"
)

type Cart struct {
	Items []domain.OrderItem `json:"items"`
}

func New() Cart {
	return Cart{Items: []domain.OrderItem{}}
}

// FromItems deep-copies items into a new cart.
func FromItems(items []domain.OrderItem) Cart {
	c := New()
	for _, it := range items {
		c.Items = append(c.Items, it.Clone())
	}
	return c
}

func (c Cart) clone() Cart {
	return FromItems(c.Items)
}

// AddOrIncrement adds a plain line for p or bumps the quantity of an
// existing plain line for the same product carrying the same adjustment.
// A merged line keeps the unit price it was added at. Configured lines
// never merge.
func (c Cart) AddOrIncrement(p domain.Product, qty int, extraUnitDelta float64) Cart {
	if qty < 1 {
		qty = 1
	}
	out := c.clone()
	adjustment := money.Round2(extraUnitDelta)

	for i := range out.Items {
		it := &out.Items[i]
		if it.ProductID == p.ID && it.IsPlain() && it.PriceAdjustment == adjustment {
			it.Quantity += qty
			it.TotalPrice = money.Mul(it.UnitPrice, it.Quantity)
			return out
		}
	}

	unit := money.Add(p.Price, adjustment)
	out.Items = append(out.Items, domain.OrderItem{
		ProductID:       p.ID,
		ProductName:     p.Name,
		Quantity:        qty,
		UnitPrice:       unit,
		TotalPrice:      money.Mul(unit, qty),
		PriceAdjustment: adjustment,
	})
	return out
}

// AddConfiguredItem appends item as its own line. The total is recomputed
// from the unit price so a caller cannot smuggle in a mismatched total.
func (c Cart) AddConfiguredItem(item domain.OrderItem) Cart {
	out := c.clone()
	it := item.Clone()
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	it.Comment = strings.TrimSpace(it.Comment)
	it.TotalPrice = money.Mul(it.UnitPrice, it.Quantity)
	out.Items = append(out.Items, it)
	return out
}

// UpdateQuantity applies delta to line i. A result below one, or an index
// out of range, leaves the cart unchanged; removal is explicit.
func (c Cart) UpdateQuantity(i, delta int) Cart {
	if !c.InRange(i) {
		return c.clone()
	}
	return c.SetQuantity(i, c.Items[i].Quantity+delta)
}

func (c Cart) SetQuantity(i, qty int) Cart {
	out := c.clone()
	if !out.InRange(i) || qty < 1 {
		return out
	}
	it := &out.Items[i]
	it.Quantity = qty
	it.TotalPrice = money.Mul(it.UnitPrice, qty)
	return out
}

func (c Cart) RemoveAt(i int) Cart {
	out := c.clone()
	if !out.InRange(i) {
		return out
	}
	out.Items = append(out.Items[:i], out.Items[i+1:]...)
	return out
}

func (c Cart) Clear() Cart {
	return New()
}

func (c Cart) Total() float64 {
	totals := make([]float64, 0, len(c.Items))
	for _, it := range c.Items {
		totals = append(totals, it.TotalPrice)
	}
	return money.Add(totals...)
}

func (c Cart) InRange(i int) bool {
	return i >= 0 && i < len(c.Items)
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a deep copy of the lines, safe to persist on an order.
func (c Cart) Snapshot() []domain.OrderItem {
	return c.clone().Items
}

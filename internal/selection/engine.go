// Package selection prices one product while it is being configured, before
// it is committed to a cart. Each product behavior is a distinct Selection
// variant; the Engine holds exactly one of them.
package selection

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/money"
)

var (
	ErrWrongMode     = errors.New("operation not supported by this selection mode")
	ErrUnknownOption = errors.New("unknown option")
)

// Selection is one of *Standard, *Variant, *Builder or *Combo.
type Selection interface {
	Mode() domain.Behavior
	delta() float64
	snapshot() []domain.SelectedOption
	validate() error
}

type Standard struct{}

func (*Standard) Mode() domain.Behavior { return domain.BehaviorStandard }
func (*Standard) delta() float64 { return 0 }
func (*Standard) snapshot() []domain.SelectedOption { return nil }
func (*Standard) validate() error { return nil }

type Engine struct {
	product *domain.Product
	name    string
	base    float64
	sel     Selection
	newID   func() string
}

type Option func(*Engine)

// WithIDGenerator replaces the combo instance id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

func newEngine(product *domain.Product, name string, base float64, sel Selection, opts []Option) *Engine {
	e := &Engine{
		product: product,
		name:    name,
		base:    base,
		sel:     sel,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewStandard(p domain.Product, opts ...Option) *Engine {
	return newEngine(&p, p.Name, p.Price, &Standard{}, opts)
}

func (e *Engine) Mode() domain.Behavior {
	return e.sel.Mode()
}

// Selection exposes the current state for rendering. Callers must not
// mutate it; use the Engine methods.
func (e *Engine) Selection() Selection {
	return e.sel
}

func (e *Engine) Name() string {
	return e.name
}

func (e *Engine) Base() float64 {
	return e.base
}

// Total is base plus combo and builder deltas. Variant choices never move it.
func (e *Engine) Total() float64 {
	return money.Add(e.base, e.sel.delta())
}

func (e *Engine) Options() []domain.SelectedOption {
	return e.sel.snapshot()
}

func (e *Engine) Validate() error {
	return e.sel.validate()
}

func (e *Engine) ToggleIngredient(id string) error {
	b, ok := e.sel.(*Builder)
	if !ok {
		return ErrWrongMode
	}
	return b.toggle(id)
}

func (e *Engine) SelectComboOption(slotID, productID string) error {
	c, ok := e.sel.(*Combo)
	if !ok {
		return ErrWrongMode
	}
	return c.selectOption(slotID, productID)
}

func (e *Engine) ToggleComboOption(slotID, productID string) error {
	c, ok := e.sel.(*Combo)
	if !ok {
		return ErrWrongMode
	}
	return c.toggleOption(slotID, productID)
}

func (e *Engine) SelectVariant(groupID, optionID string) error {
	v, ok := e.sel.(*Variant)
	if !ok {
		return ErrWrongMode
	}
	return v.selectOption(groupID, optionID)
}

// Commit turns the current configuration into a priced cart line.
func (e *Engine) Commit(quantity int, comment string) (domain.OrderItem, error) {
	if quantity < 1 {
		return domain.OrderItem{}, domain.NewValidationError("quantity", "quantity must be at least 1")
	}
	if err := e.Validate(); err != nil {
		return domain.OrderItem{}, err
	}

	unit := e.Total()
	item := domain.OrderItem{
		ProductName: e.name,
		Quantity:    quantity,
		UnitPrice:   unit,
		TotalPrice:  money.Mul(unit, quantity),
		Options:     e.Options(),
		Comment:     strings.TrimSpace(comment),
	}
	if e.product != nil {
		item.ProductID = e.product.ID
	}

	if c, ok := e.sel.(*Combo); ok {
		item.IsCombo = true
		item.Combo = c.instance(e.newID())
	}

	return item, nil
}

package selection

import (
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/money"
)

// Builder tracks which ingredients are on the product. Defaults are included
// in the base price; removing one is not a discount.
type Builder struct {
	Ingredients []domain.Ingredient
	selected    map[string]bool
}

func NewBuilder(p domain.Product, ingredients []domain.Ingredient, opts ...Option) *Engine {
	b := &Builder{
		Ingredients: append([]domain.Ingredient(nil), ingredients...),
		selected:    make(map[string]bool, len(ingredients)),
	}
	for _, ing := range ingredients {
		if ing.IsDefault {
			b.selected[ing.ID] = true
		}
	}
	return newEngine(&p, p.Name, p.Price, b, opts)
}

func (*Builder) Mode() domain.Behavior { return domain.BehaviorBuilder }

func (b *Builder) IsSelected(id string) bool {
	return b.selected[id]
}

func (b *Builder) toggle(id string) error {
	if _, ok := b.find(id); !ok {
		return ErrUnknownOption
	}
	if b.selected[id] {
		delete(b.selected, id)
	} else {
		b.selected[id] = true
	}
	return nil
}

func (b *Builder) find(id string) (domain.Ingredient, bool) {
	for _, ing := range b.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return domain.Ingredient{}, false
}

func (b *Builder) delta() float64 {
	var prices []float64
	for _, ing := range b.Ingredients {
		if b.selected[ing.ID] && !ing.IsDefault {
			prices = append(prices, ing.Price)
		}
	}
	return money.Add(prices...)
}

// snapshot lists paid extras and removed defaults for the kitchen ticket.
func (b *Builder) snapshot() []domain.SelectedOption {
	var out []domain.SelectedOption
	for _, ing := range b.Ingredients {
		switch {
		case b.selected[ing.ID] && !ing.IsDefault:
			out = append(out, domain.SelectedOption{ID: ing.ID, Name: ing.Name, Price: ing.Price})
		case !b.selected[ing.ID] && ing.IsDefault:
			out = append(out, domain.SelectedOption{ID: ing.ID, Name: ing.Name, Removed: true})
		}
	}
	return out
}

func (*Builder) validate() error { return nil }

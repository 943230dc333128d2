package selection

import (
	"fmt"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/money"
)

// SlotState is one combo slot with the options that resolved against the
// live catalog and the current picks.
type SlotState struct {
	Slot    domain.ComboSlot
	Options []domain.ComboOption
	Picks   []domain.ComboOption
}

// Default is the designated default option, else the first one. A slot
// with no resolved options has no default.
func (s *SlotState) Default() (domain.ComboOption, bool) {
	if len(s.Options) == 0 {
		return domain.ComboOption{}, false
	}
	if s.Slot.DefaultProductID != "" {
		for _, opt := range s.Options {
			if opt.ProductID == s.Slot.DefaultProductID {
				return opt, true
			}
		}
	}
	return s.Options[0], true
}

func (s *SlotState) option(productID string) (domain.ComboOption, bool) {
	for _, opt := range s.Options {
		if opt.ProductID == productID {
			return opt, true
		}
	}
	return domain.ComboOption{}, false
}

func (s *SlotState) pickIndex(productID string) int {
	for i, p := range s.Picks {
		if p.ProductID == productID {
			return i
		}
	}
	return -1
}

// delta charges the positive difference of each pick over the default.
func (s *SlotState) delta() float64 {
	def, ok := s.Default()
	if !ok {
		return 0
	}
	var deltas []float64
	for _, p := range s.Picks {
		deltas = append(deltas, money.PositiveDiff(p.Price, def.Price))
	}
	return money.Add(deltas...)
}

type Combo struct {
	Definition domain.ComboDefinition
	Slots      []*SlotState
}

// ResolveSlotOptions cross-references every slot's allowed list with the
// available products. An empty allowed list admits every available
// non-combo product.
func ResolveSlotOptions(def domain.ComboDefinition, products []domain.Product) map[string][]domain.ComboOption {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make(map[string][]domain.ComboOption, len(def.Slots))
	for _, slot := range def.Slots {
		var opts []domain.ComboOption
		if len(slot.AllowedProductIDs) == 0 {
			for _, p := range products {
				if p.Available && p.Behavior() != domain.BehaviorCombo {
					opts = append(opts, domain.ComboOption{ProductID: p.ID, Name: p.Name, Price: p.Price})
				}
			}
		} else {
			for _, id := range slot.AllowedProductIDs {
				p, ok := byID[id]
				if !ok || !p.Available {
					continue
				}
				opts = append(opts, domain.ComboOption{ProductID: p.ID, Name: p.Name, Price: p.Price})
			}
		}
		out[slot.ID] = opts
	}
	return out
}

// NewCombo preselects each slot's default. product is the menu entry the
// combo was opened from and may be nil for a pure combo line.
func NewCombo(def domain.ComboDefinition, product *domain.Product, slotOptions map[string][]domain.ComboOption, opts ...Option) *Engine {
	c := &Combo{Definition: def}
	for _, slot := range def.Slots {
		st := &SlotState{
			Slot:    slot,
			Options: append([]domain.ComboOption(nil), slotOptions[slot.ID]...),
		}
		if d, ok := st.Default(); ok && slot.Max > 0 {
			st.Picks = []domain.ComboOption{d}
		}
		c.Slots = append(c.Slots, st)
	}

	name := def.Name
	var p *domain.Product
	if product != nil {
		cp := *product
		p = &cp
		name = cp.Name
	}
	return newEngine(p, name, def.Price, c, opts)
}

func (*Combo) Mode() domain.Behavior { return domain.BehaviorCombo }

func (c *Combo) slot(slotID string) (*SlotState, bool) {
	for _, s := range c.Slots {
		if s.Slot.ID == slotID {
			return s, true
		}
	}
	return nil, false
}

// selectOption replaces every pick in the slot with the given option.
func (c *Combo) selectOption(slotID, productID string) error {
	s, ok := c.slot(slotID)
	if !ok {
		return ErrUnknownOption
	}
	opt, ok := s.option(productID)
	if !ok {
		return ErrUnknownOption
	}
	s.Picks = []domain.ComboOption{opt}
	return nil
}

// toggleOption adds or removes one option, keeping at most Max picks. On a
// single-pick slot adding replaces the current pick.
func (c *Combo) toggleOption(slotID, productID string) error {
	s, ok := c.slot(slotID)
	if !ok {
		return ErrUnknownOption
	}
	opt, ok := s.option(productID)
	if !ok {
		return ErrUnknownOption
	}

	if i := s.pickIndex(productID); i >= 0 {
		s.Picks = append(s.Picks[:i:i], s.Picks[i+1:]...)
		return nil
	}
	if s.Slot.Max <= 1 {
		s.Picks = []domain.ComboOption{opt}
		return nil
	}
	if len(s.Picks) >= s.Slot.Max {
		return domain.NewValidationError("slots."+slotID, fmt.Sprintf("%s allows at most %d selection(s)", s.Slot.Title, s.Slot.Max))
	}
	s.Picks = append(s.Picks, opt)
	return nil
}

func (c *Combo) delta() float64 {
	var deltas []float64
	for _, s := range c.Slots {
		deltas = append(deltas, s.delta())
	}
	return money.Add(deltas...)
}

func (c *Combo) snapshot() []domain.SelectedOption {
	var out []domain.SelectedOption
	for _, s := range c.Slots {
		def, _ := s.Default()
		for _, p := range s.Picks {
			out = append(out, domain.SelectedOption{
				ID:    p.ProductID,
				Name:  p.Name,
				Price: money.PositiveDiff(p.Price, def.Price),
				Group: s.Slot.Title,
			})
		}
	}
	return out
}

// validate checks slot cardinality. Slots that resolved to no options are
// rendered empty and skipped.
func (c *Combo) validate() error {
	for _, s := range c.Slots {
		if len(s.Options) == 0 {
			continue
		}
		n := len(s.Picks)
		if !s.Slot.IsRequired() && n == 0 {
			continue
		}
		if n < s.Slot.Min {
			return domain.NewValidationError("slots."+s.Slot.ID, fmt.Sprintf("%s requires at least %d selection(s)", s.Slot.Title, s.Slot.Min))
		}
		if n > s.Slot.Max {
			return domain.NewValidationError("slots."+s.Slot.ID, fmt.Sprintf("%s allows at most %d selection(s)", s.Slot.Title, s.Slot.Max))
		}
	}
	return nil
}

func (c *Combo) instance(id string) *domain.ComboInstance {
	inst := &domain.ComboInstance{
		ID:                id,
		ComboDefinitionID: c.Definition.ID,
		Name:              c.Definition.Name,
		Price:             c.Definition.Price,
	}

	index := make(map[string]int)
	for _, s := range c.Slots {
		for _, p := range s.Picks {
			if i, ok := index[p.ProductID]; ok {
				inst.Items[i].Quantity++
				continue
			}
			index[p.ProductID] = len(inst.Items)
			inst.Items = append(inst.Items, domain.ComboItem{ProductID: p.ProductID, Quantity: 1})
		}
	}
	return inst
}

package selection

import "github.com/javacachava/pizza-brava-sub000/internal/domain"

type VariantChoice struct {
	Group  domain.VariantGroup
	Chosen domain.VariantOption
}

// Variant holds one choice per group. Choices are labels only.
type Variant struct {
	Choices []VariantChoice
}

func NewVariant(p domain.Product, groups []domain.VariantGroup, opts ...Option) *Engine {
	v := &Variant{}
	for _, g := range groups {
		if len(g.Options) == 0 {
			continue
		}
		v.Choices = append(v.Choices, VariantChoice{Group: g, Chosen: g.Options[0]})
	}
	return newEngine(&p, p.Name, p.Price, v, opts)
}

func (*Variant) Mode() domain.Behavior { return domain.BehaviorVariant }

func (v *Variant) selectOption(groupID, optionID string) error {
	for i := range v.Choices {
		if v.Choices[i].Group.ID != groupID {
			continue
		}
		for _, opt := range v.Choices[i].Group.Options {
			if opt.ID == optionID {
				v.Choices[i].Chosen = opt
				return nil
			}
		}
		return ErrUnknownOption
	}
	return ErrUnknownOption
}

func (*Variant) delta() float64 { return 0 }

func (v *Variant) snapshot() []domain.SelectedOption {
	out := make([]domain.SelectedOption, 0, len(v.Choices))
	for _, c := range v.Choices {
		out = append(out, domain.SelectedOption{ID: c.Chosen.ID, Name: c.Chosen.Name, Group: c.Group.Name})
	}
	return out
}

func (*Variant) validate() error { return nil }

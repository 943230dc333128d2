package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"github.com/javacachava/pizza-brava-sub000/internal/selection"
	"go.uber.org/zap"
)

// ConfigurationRequest is the desired end state of a product configuration.
// Ingredients, when non-nil, is the full set of ingredient ids that should
// be on the product. Slots maps a combo slot id to its picks.
type ConfigurationRequest struct {
	ProductID   string              `json:"product_id"`
	ComboID     string              `json:"combo_id"`
	Ingredients []string            `json:"ingredients"`
	Variants    map[string]string   `json:"variants"`
	Slots       map[string][]string `json:"slots"`
	Quantity    int                 `json:"quantity"`
	Comment     string              `json:"comment"`
}

type Quote struct {
	Name     string                  `json:"name"`
	Mode     domain.Behavior         `json:"mode"`
	Base     float64                 `json:"base"`
	Total    float64                 `json:"total"`
	Options  []domain.SelectedOption `json:"options"`
	Valid    bool                    `json:"valid"`
	Error    *domain.ValidationError `json:"error,omitempty"`
	Quantity int                     `json:"quantity"`
	Line     float64                 `json:"line_total"`
}

type ConfigurationService struct {
	catalogRepo repo.CatalogRepository
	newID       func() string
	logger      *zap.SugaredLogger
}

func NewConfigurationService(
	catalogRepo repo.CatalogRepository,
	newID func() string,
	logger *zap.SugaredLogger,
) *ConfigurationService {
	return &ConfigurationService{
		catalogRepo: catalogRepo,
		newID:       newID,
		logger:      logger,
	}
}

func (s *ConfigurationService) engineOptions() []selection.Option {
	if s.newID == nil {
		return nil
	}
	return []selection.Option{selection.WithIDGenerator(s.newID)}
}

// Begin opens a selection engine for the product in the mode its behavior
// calls for, with defaults preselected.
func (s *ConfigurationService) Begin(ctx context.Context, productID string) (*selection.Engine, error) {
	product, err := s.catalogRepo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.Available {
		return nil, domain.NewValidationError("product_id", fmt.Sprintf("%s is not available", product.Name))
	}

	switch product.Behavior() {
	case domain.BehaviorCombo:
		def, err := s.catalogRepo.GetComboDefinition(ctx, product.ComboDefinitionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get combo definition: %w", err)
		}
		return s.comboEngine(ctx, *def, product)

	case domain.BehaviorBuilder:
		ingredients, err := s.catalogRepo.ListIngredients(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list ingredients: %w", err)
		}
		return selection.NewBuilder(*product, ingredientsFor(*product, ingredients), s.engineOptions()...), nil

	case domain.BehaviorVariant:
		groups, err := s.catalogRepo.ListFlavors(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list variant groups: %w", err)
		}
		return selection.NewVariant(*product, variantGroupsFor(*product, groups), s.engineOptions()...), nil

	default:
		return selection.NewStandard(*product, s.engineOptions()...), nil
	}
}

// BeginCombo opens a combo line straight from its definition.
func (s *ConfigurationService) BeginCombo(ctx context.Context, comboID string) (*selection.Engine, error) {
	def, err := s.catalogRepo.GetComboDefinition(ctx, comboID)
	if err != nil {
		return nil, fmt.Errorf("failed to get combo definition: %w", err)
	}
	if !def.Available {
		return nil, domain.NewValidationError("combo_id", fmt.Sprintf("%s is not available", def.Name))
	}
	return s.comboEngine(ctx, *def, nil)
}

func (s *ConfigurationService) comboEngine(ctx context.Context, def domain.ComboDefinition, product *domain.Product) (*selection.Engine, error) {
	products, err := s.catalogRepo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return selection.NewCombo(def, product, selection.ResolveSlotOptions(def, products), s.engineOptions()...), nil
}

// Configure opens an engine and drives it to the requested state.
func (s *ConfigurationService) Configure(ctx context.Context, req ConfigurationRequest) (*selection.Engine, error) {
	var (
		engine *selection.Engine
		err    error
	)
	switch {
	case req.ProductID != "":
		engine, err = s.Begin(ctx, req.ProductID)
	case req.ComboID != "":
		engine, err = s.BeginCombo(ctx, req.ComboID)
	default:
		return nil, domain.NewValidationError("product_id", "product_id or combo_id is required")
	}
	if err != nil {
		return nil, err
	}

	if err := apply(engine, req); err != nil {
		return nil, err
	}
	return engine, nil
}

// Quote prices a configuration without committing it. A configuration that
// fails slot validation still gets a quote, flagged invalid.
func (s *ConfigurationService) Quote(ctx context.Context, req ConfigurationRequest) (*Quote, error) {
	engine, err := s.Configure(ctx, req)
	if err != nil {
		return nil, err
	}

	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	q := &Quote{
		Name:     engine.Name(),
		Mode:     engine.Mode(),
		Base:     engine.Base(),
		Total:    engine.Total(),
		Options:  engine.Options(),
		Valid:    true,
		Quantity: qty,
	}
	if item, err := engine.Commit(qty, req.Comment); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		q.Valid = false
		q.Error = ve
	} else {
		q.Line = item.TotalPrice
	}

	return q, nil
}

// Build configures and commits, returning a cart line.
func (s *ConfigurationService) Build(ctx context.Context, req ConfigurationRequest) (domain.OrderItem, error) {
	engine, err := s.Configure(ctx, req)
	if err != nil {
		return domain.OrderItem{}, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	return engine.Commit(qty, req.Comment)
}

func apply(engine *selection.Engine, req ConfigurationRequest) error {
	switch sel := engine.Selection().(type) {
	case *selection.Builder:
		if req.Ingredients == nil {
			return nil
		}
		want := make(map[string]bool, len(req.Ingredients))
		for _, id := range req.Ingredients {
			want[id] = true
		}
		for id := range want {
			if !hasIngredient(sel, id) {
				return optionError("ingredients", id)
			}
		}
		for _, ing := range sel.Ingredients {
			if sel.IsSelected(ing.ID) != want[ing.ID] {
				if err := engine.ToggleIngredient(ing.ID); err != nil {
					return err
				}
			}
		}

	case *selection.Variant:
		for groupID, optionID := range req.Variants {
			if err := engine.SelectVariant(groupID, optionID); err != nil {
				return optionError("variants."+groupID, optionID)
			}
		}

	case *selection.Combo:
		for slotID, picks := range req.Slots {
			state := slotState(sel, slotID)
			if state == nil {
				return optionError("slots", slotID)
			}
			for _, current := range append([]domain.ComboOption(nil), state.Picks...) {
				if err := engine.ToggleComboOption(slotID, current.ProductID); err != nil {
					return err
				}
			}
			for _, productID := range picks {
				if err := engine.ToggleComboOption(slotID, productID); err != nil {
					if errors.Is(err, selection.ErrUnknownOption) {
						return optionError("slots."+slotID, productID)
					}
					return err
				}
			}
		}
	}

	return nil
}

func hasIngredient(b *selection.Builder, id string) bool {
	for _, ing := range b.Ingredients {
		if ing.ID == id {
			return true
		}
	}
	return false
}

func slotState(c *selection.Combo, slotID string) *selection.SlotState {
	for _, st := range c.Slots {
		if st.Slot.ID == slotID {
			return st
		}
	}
	return nil
}

func optionError(field, id string) error {
	return domain.NewValidationError(field, fmt.Sprintf("unknown option %q", id))
}

// ingredientsFor keeps available ingredients, restricted to the product's
// list when it has one.
func ingredientsFor(p domain.Product, all []domain.Ingredient) []domain.Ingredient {
	allowed := toSet(p.IngredientIDs)
	out := make([]domain.Ingredient, 0, len(all))
	for _, ing := range all {
		if !ing.Available {
			continue
		}
		if len(allowed) > 0 && !allowed[ing.ID] {
			continue
		}
		out = append(out, ing)
	}
	return out
}

// variantGroupsFor uses the product's explicit group list, otherwise every
// group whose kind the product uses.
func variantGroupsFor(p domain.Product, all []domain.VariantGroup) []domain.VariantGroup {
	allowed := toSet(p.VariantGroupIDs)
	out := make([]domain.VariantGroup, 0, len(all))
	for _, g := range all {
		switch {
		case len(allowed) > 0:
			if !allowed[g.ID] {
				continue
			}
		case g.Kind == domain.VariantFlavor && !p.UsesFlavors:
			continue
		case g.Kind == domain.VariantSize && !p.UsesSizeVariant:
			continue
		}
		out = append(out, g)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

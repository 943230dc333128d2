package domain

import (
	"fmt"
	"strings"
	"time"
)

// Behavior is the selection mode a product is configured with before it
// goes into the cart.
type Behavior string

const (
	BehaviorStandard Behavior = "standard"
	BehaviorVariant  Behavior = "simple_variant"
	BehaviorBuilder  Behavior = "custom_builder"
	BehaviorCombo    Behavior = "combo_pack"
)

type Product struct {
	ID                string    `bson:"_id" json:"id"`
	CategoryID        string    `bson:"category_id" json:"category_id"`
	Name              string    `bson:"name" json:"name"`
	Description       string    `bson:"description" json:"description"`
	Price             float64   `bson:"price" json:"price"`
	Available         bool      `bson:"available" json:"available"`
	UsesIngredients   bool      `bson:"uses_ingredients" json:"uses_ingredients"`
	UsesFlavors       bool      `bson:"uses_flavors" json:"uses_flavors"`
	UsesSizeVariant   bool      `bson:"uses_size_variant" json:"uses_size_variant"`
	ComboEligible     bool      `bson:"combo_eligible" json:"combo_eligible"`
	ComboDefinitionID string    `bson:"combo_definition_id,omitempty" json:"combo_definition_id,omitempty"`
	IngredientIDs     []string  `bson:"ingredient_ids,omitempty" json:"ingredient_ids,omitempty"`
	VariantGroupIDs   []string  `bson:"variant_group_ids,omitempty" json:"variant_group_ids,omitempty"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// Behavior picks the dominant mode: combo > builder > variant > standard.
func (p Product) Behavior() Behavior {
	switch {
	case p.ComboEligible && p.ComboDefinitionID != "":
		return BehaviorCombo
	case p.UsesIngredients:
		return BehaviorBuilder
	case p.UsesFlavors || p.UsesSizeVariant:
		return BehaviorVariant
	default:
		return BehaviorStandard
	}
}

type SlotRequirement string

const (
	SlotRequired SlotRequirement = "required"
	SlotOptional SlotRequirement = "optional"
)

type ComboSlot struct {
	ID                string          `bson:"id" json:"id"`
	Title             string          `bson:"title" json:"title"`
	Requirement       SlotRequirement `bson:"requirement" json:"requirement"`
	Min               int             `bson:"min" json:"min"`
	Max               int             `bson:"max" json:"max"`
	AllowedProductIDs []string        `bson:"allowed_product_ids" json:"allowed_product_ids"`
	DefaultProductID  string          `bson:"default_product_id,omitempty" json:"default_product_id,omitempty"`
}

func (s ComboSlot) IsRequired() bool {
	return s.Requirement == SlotRequired
}

// Allows reports whether productID may fill the slot. An empty allow list
// leaves the slot unrestricted.
func (s ComboSlot) Allows(productID string) bool {
	if len(s.AllowedProductIDs) == 0 {
		return true
	}
	for _, id := range s.AllowedProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type ComboDefinition struct {
	ID          string      `bson:"_id" json:"id"`
	Name        string      `bson:"name" json:"name"`
	Description string      `bson:"description" json:"description"`
	Price       float64     `bson:"price" json:"price"`
	Available   bool        `bson:"available" json:"available"`
	Slots       []ComboSlot `bson:"slots" json:"slots"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
}

// Validate is the authoring-time check applied before a definition is stored.
func (d ComboDefinition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return NewValidationError("id", "combo id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("name", "combo name is required")
	}
	if d.Price <= 0 {
		return NewValidationError("price", "combo price is required")
	}

	seen := make(map[string]struct{}, len(d.Slots))
	for i, slot := range d.Slots {
		field := fmt.Sprintf("slots[%d]", i)
		if strings.TrimSpace(slot.ID) == "" {
			return NewValidationError(field, "slot id is required")
		}
		if _, dup := seen[slot.ID]; dup {
			return NewValidationError(field, fmt.Sprintf("duplicate slot id %q", slot.ID))
		}
		seen[slot.ID] = struct{}{}

		if slot.Requirement != SlotRequired && slot.Requirement != SlotOptional {
			return NewValidationError(field, fmt.Sprintf("unknown slot requirement %q", slot.Requirement))
		}
		if slot.Min < 0 || slot.Max < 0 || slot.Min > slot.Max {
			return NewValidationError(field, fmt.Sprintf("invalid slot bounds min=%d max=%d", slot.Min, slot.Max))
		}
		if slot.DefaultProductID != "" && !slot.Allows(slot.DefaultProductID) {
			return NewValidationError(field, "default product is not in the allowed list")
		}
	}

	return nil
}

// ComboOption is a concrete product usable inside a slot.
type ComboOption struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type Ingredient struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	IsDefault bool      `bson:"is_default" json:"is_default"`
	Available bool      `bson:"available" json:"available"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type VariantKind string

const (
	VariantFlavor VariantKind = "flavor"
	VariantSize   VariantKind = "size"
)

type VariantOption struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// VariantGroup is one axis of choice ("Flavor", "Size"). Options carry no
// price delta.
type VariantGroup struct {
	ID        string          `bson:"_id" json:"id"`
	Name      string          `bson:"name" json:"name"`
	Kind      VariantKind     `bson:"kind" json:"kind"`
	Options   []VariantOption `bson:"options" json:"options"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

// Catalog is a full catalog snapshot as produced by an import.
type Catalog struct {
	Products      []Product         `json:"products"`
	Combos        []ComboDefinition `json:"combos"`
	Ingredients   []Ingredient      `json:"ingredients"`
	VariantGroups []VariantGroup    `json:"variant_groups"`
}

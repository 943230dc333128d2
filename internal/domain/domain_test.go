package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPipelineIsMonotonic(t *testing.T) {
	var seen []OrderStatus
	status := StatusPending
	seen = append(seen, status)
	for {
		next, ok := status.Next()
		if !ok {
			break
		}
		require.Greater(t, next.Rank(), status.Rank())
		status = next
		seen = append(seen, status)
	}

	assert.Equal(t, []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusDelivered}, seen)

	_, ok := StatusDelivered.Next()
	assert.False(t, ok)
	_, ok = OrderStatus("cancelled").Next()
	assert.False(t, ok)
	assert.False(t, StatusDelivered.IsActive())
}

func TestProductBehaviorPriority(t *testing.T) {
	cases := []struct {
		name    string
		product Product
		want    Behavior
	}{
		{name: "standard", product: Product{}, want: BehaviorStandard},
		{name: "flavor", product: Product{UsesFlavors: true}, want: BehaviorVariant},
		{name: "size", product: Product{UsesSizeVariant: true}, want: BehaviorVariant},
		{name: "builder beats variant", product: Product{UsesIngredients: true, UsesFlavors: true}, want: BehaviorBuilder},
		{name: "combo beats builder", product: Product{ComboEligible: true, ComboDefinitionID: "c1", UsesIngredients: true}, want: BehaviorCombo},
		{name: "combo flag without definition", product: Product{ComboEligible: true}, want: BehaviorStandard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.product.Behavior())
		})
	}
}

func TestComboDefinitionValidate(t *testing.T) {
	valid := ComboDefinition{
		ID:    "combo-1",
		Name:  "Family",
		Price: 8,
		Slots: []ComboSlot{
			{ID: "main", Title: "Main", Requirement: SlotRequired, Min: 1, Max: 1, AllowedProductIDs: []string{"p1", "p2"}, DefaultProductID: "p1"},
			{ID: "drink", Title: "Drink", Requirement: SlotOptional, Min: 0, Max: 2},
		},
	}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.Name = " "
	assert.True(t, IsValidation(noName.Validate()))

	noPrice := valid
	noPrice.Price = 0
	assert.True(t, IsValidation(noPrice.Validate()))

	badBounds := valid
	badBounds.Slots = []ComboSlot{{ID: "s", Requirement: SlotRequired, Min: 2, Max: 1}}
	assert.True(t, IsValidation(badBounds.Validate()))

	badDefault := valid
	badDefault.Slots = []ComboSlot{{ID: "s", Requirement: SlotRequired, Min: 1, Max: 1, AllowedProductIDs: []string{"p1"}, DefaultProductID: "p9"}}
	assert.True(t, IsValidation(badDefault.Validate()))

	dup := valid
	dup.Slots = []ComboSlot{valid.Slots[0], valid.Slots[0]}
	assert.True(t, IsValidation(dup.Validate()))
}

func TestOrderItemCloneIsDeep(t *testing.T) {
	item := OrderItem{
		ProductName: "Combo",
		Options:     []SelectedOption{{ID: "o1", Name: "Cola"}},
		IsCombo:     true,
		Combo:       &ComboInstance{ID: "x", Items: []ComboItem{{ProductID: "p1", Quantity: 1}}},
	}

	clone := item.Clone()
	clone.Options[0].Name = "changed"
	clone.Combo.Items[0].Quantity = 5
	clone.Combo.Name = "changed"

	assert.Equal(t, "Cola", item.Options[0].Name)
	assert.Equal(t, 1, item.Combo.Items[0].Quantity)
	assert.Equal(t, "", item.Combo.Name)
}

func TestOrderNumberFormat(t *testing.T) {
	day := DayKey(time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "20261016", day)
	assert.Equal(t, "20261016-0001", FormatOrderNumber(day, 1))
	assert.Equal(t, "20261016-0123", FormatOrderNumber(day, 123))
}

func TestErrors(t *testing.T) {
	err := NotFound("order", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, NewValidationError("phone", "phone is required"), "phone: phone is required")
	assert.False(t, IsValidation(err))
}

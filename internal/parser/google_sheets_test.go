package parser

import (
	"testing"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sheet(rows ...[]interface{}) [][]interface{} {
	header := []interface{}{"header"}
	return append([][]interface{}{header}, rows...)
}

func validTabs() map[string][][]interface{} {
	return map[string][][]interface{}{
		TabProducts: sheet(
			[]interface{}{"p-pizza", "pizzas", "Pizza", "Build your own", "10.00", "TRUE", "TRUE"},
			[]interface{}{"p-soda", "drinks", "Soda", "", "$1.25", "TRUE", "FALSE", "TRUE", "TRUE", "", "", "", "flavors, sizes"},
			[]interface{}{"p-fries", "sides", "Fries", "", "1.50"},
			[]interface{}{""},
			[]interface{}{"p-family", "combos", "Family deal", "", "8", "TRUE", "", "", "", "TRUE", "c-family"},
		),
		TabIngredients: sheet(
			[]interface{}{"i-cheese", "Cheese", "1.20", "TRUE", "TRUE"},
			[]interface{}{"i-bacon", "Bacon", "1", "no"},
		),
		TabFlavors: sheet(
			[]interface{}{"flavors", "Flavor", "flavor", "cola", "Cola"},
			[]interface{}{"flavors", "Flavor", "flavor", "lemon", "Lemon"},
			[]interface{}{"sizes", "Size", "size", "m", "Medium"},
		),
		TabCombos: sheet(
			[]interface{}{"c-family", "Family combo", "8.00", "side", "Side", "TRUE", "1", "1", "p-fries", "p-fries"},
			[]interface{}{"c-family", "", "", "drink", "Drink", "FALSE", "1", "2", "p-soda"},
		),
	}
}

func TestParseTabs(t *testing.T) {
	catalog, err := ParseTabs(validTabs())
	require.NoError(t, err)

	require.Len(t, catalog.Products, 4)
	assert.Equal(t, domain.BehaviorBuilder, catalog.Products[0].Behavior())
	assert.Equal(t, 1.25, catalog.Products[1].Price)
	assert.Equal(t, []string{"flavors", "sizes"}, catalog.Products[1].VariantGroupIDs)
	assert.Equal(t, domain.BehaviorVariant, catalog.Products[1].Behavior())
	assert.True(t, catalog.Products[2].Available, "availability defaults to true")
	assert.Equal(t, domain.BehaviorCombo, catalog.Products[3].Behavior())

	require.Len(t, catalog.Ingredients, 2)
	assert.True(t, catalog.Ingredients[0].IsDefault)
	assert.False(t, catalog.Ingredients[1].IsDefault)

	require.Len(t, catalog.VariantGroups, 2)
	assert.Len(t, catalog.VariantGroups[0].Options, 2)
	assert.Equal(t, domain.VariantSize, catalog.VariantGroups[1].Kind)

	require.Len(t, catalog.Combos, 1)
	combo := catalog.Combos[0]
	assert.Equal(t, "Family combo", combo.Name)
	assert.Equal(t, 8.00, combo.Price)
	require.Len(t, combo.Slots, 2)
	assert.True(t, combo.Slots[0].IsRequired())
	assert.Equal(t, "p-fries", combo.Slots[0].DefaultProductID)
	assert.False(t, combo.Slots[1].IsRequired())
	assert.Equal(t, 2, combo.Slots[1].Max)
}

func TestParseTabsRejectsBadRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string][][]interface{})
		want   string
	}{
		{
			name:   "empty products",
			mutate: func(tabs map[string][][]interface{}) { tabs[TabProducts] = sheet() },
			want:   "no data found",
		},
		{
			name: "bad price",
			mutate: func(tabs map[string][][]interface{}) {
				tabs[TabIngredients] = sheet([]interface{}{"i-x", "X", "abc"})
			},
			want: "Ingredients row 2",
		},
		{
			name: "duplicate product",
			mutate: func(tabs map[string][][]interface{}) {
				tabs[TabProducts] = append(tabs[TabProducts], []interface{}{"p-pizza", "pizzas", "Again", "", "1"})
			},
			want: "duplicate product id",
		},
		{
			name: "combo without price",
			mutate: func(tabs map[string][][]interface{}) {
				tabs[TabCombos][1][2] = ""
			},
			want: "combo price is required",
		},
		{
			name: "min above max",
			mutate: func(tabs map[string][][]interface{}) {
				tabs[TabCombos][2][6] = "3"
			},
			want: "invalid slot bounds",
		},
		{
			name: "unknown combo reference",
			mutate: func(tabs map[string][][]interface{}) {
				tabs[TabCombos] = sheet()
			},
			want: "unknown combo",
		},
		{
			name: "unknown variant kind",
			mutate: func(tabs map[string][][]interface{}) {
				tabs[TabFlavors] = sheet([]interface{}{"g", "G", "color", "red", "Red"})
			},
			want: "unknown variant kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabs := validTabs()
			tt.mutate(tabs)

			_, err := ParseTabs(tabs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseHelpers(t *testing.T) {
	assert.True(t, parseBool("Yes", false))
	assert.False(t, parseBool("0", true))
	assert.True(t, parseBool("", true))
	assert.Nil(t, parseList(" "))
	assert.Equal(t, []string{"a", "b"}, parseList("a, ,b"))

	price, err := parsePrice("1,250.50")
	require.NoError(t, err)
	assert.Equal(t, 1250.50, price)

	_, err = parsePrice("-1")
	assert.Error(t, err)
}

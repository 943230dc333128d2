package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	TabProducts    = "Products"
	TabIngredients = "Ingredients"
	TabFlavors     = "Flavors"
	TabCombos      = "Combos"
)

// ranges read from the spreadsheet, header row included
var tabRanges = map[string]string{
	TabProducts:    TabProducts + "!A:M",
	TabIngredients: TabIngredients + "!A:E",
	TabFlavors:     TabFlavors + "!A:E",
	TabCombos:      TabCombos + "!A:J",
}

var tabOrder = []string{TabProducts, TabIngredients, TabFlavors, TabCombos}

type GoogleSheetsParser struct {
	service *sheets.Service
}

type Config struct {
	CredentialsJSON []byte
}

func New(cfg Config) (*GoogleSheetsParser, error) {
	ctx := context.Background()

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(cfg.CredentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleSheetsParser{
		service: service,
	}, nil
}

// ParseCatalog reads the four catalog tabs and builds a catalog snapshot.
func (p *GoogleSheetsParser) ParseCatalog(ctx context.Context, spreadsheetID string) (*domain.Catalog, error) {
	ranges := make([]string, 0, len(tabOrder))
	for _, tab := range tabOrder {
		ranges = append(ranges, tabRanges[tab])
	}

	resp, err := p.service.Spreadsheets.Values.BatchGet(spreadsheetID).Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	tabs := make(map[string][][]interface{}, len(tabOrder))
	for i, vr := range resp.ValueRanges {
		if i >= len(tabOrder) {
			break
		}
		tabs[tabOrder[i]] = vr.Values
	}

	return ParseTabs(tabs)
}

// ParseTabs turns raw sheet rows into a catalog. The first row of every tab
// is a header and is skipped.
//
//	Products:    id | category | name | description | price | available | uses_ingredients |
//	             uses_flavors | uses_size_variant | combo_eligible | combo_definition_id |
//	             ingredient_ids | variant_group_ids
//	Ingredients: id | name | price | is_default | available
//	Flavors:     group_id | group_name | kind | option_id | option_name
//	Combos:      combo_id | name | price | slot_id | slot_title | required | min | max |
//	             allowed_ids | default_id
func ParseTabs(tabs map[string][][]interface{}) (*domain.Catalog, error) {
	if len(tabs[TabProducts]) < 2 {
		return nil, fmt.Errorf("no data found in %s tab", TabProducts)
	}

	catalog := &domain.Catalog{
		Products:      []domain.Product{},
		Combos:        []domain.ComboDefinition{},
		Ingredients:   []domain.Ingredient{},
		VariantGroups: []domain.VariantGroup{},
	}

	var err error
	if catalog.Products, err = parseProducts(tabs[TabProducts]); err != nil {
		return nil, err
	}
	if catalog.Ingredients, err = parseIngredients(tabs[TabIngredients]); err != nil {
		return nil, err
	}
	if catalog.VariantGroups, err = parseVariantGroups(tabs[TabFlavors]); err != nil {
		return nil, err
	}
	if catalog.Combos, err = parseCombos(tabs[TabCombos]); err != nil {
		return nil, err
	}

	combos := make(map[string]struct{}, len(catalog.Combos))
	for _, c := range catalog.Combos {
		combos[c.ID] = struct{}{}
	}
	for _, p := range catalog.Products {
		if p.ComboDefinitionID == "" {
			continue
		}
		if _, ok := combos[p.ComboDefinitionID]; !ok {
			return nil, fmt.Errorf("product %q references unknown combo %q", p.ID, p.ComboDefinitionID)
		}
	}

	return catalog, nil
}

func parseProducts(rows [][]interface{}) ([]domain.Product, error) {
	products := []domain.Product{}
	seen := make(map[string]struct{})

	// skip header
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		id := cell(row, 0)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, rowError(TabProducts, i, "duplicate product id %q", id)
		}
		seen[id] = struct{}{}

		price, err := parsePrice(cell(row, 4))
		if err != nil {
			return nil, rowError(TabProducts, i, "invalid price: %v", err)
		}

		products = append(products, domain.Product{
			ID:                id,
			CategoryID:        cell(row, 1),
			Name:              cell(row, 2),
			Description:       cell(row, 3),
			Price:             price,
			Available:         parseBool(cell(row, 5), true),
			UsesIngredients:   parseBool(cell(row, 6), false),
			UsesFlavors:       parseBool(cell(row, 7), false),
			UsesSizeVariant:   parseBool(cell(row, 8), false),
			ComboEligible:     parseBool(cell(row, 9), false),
			ComboDefinitionID: cell(row, 10),
			IngredientIDs:     parseList(cell(row, 11)),
			VariantGroupIDs:   parseList(cell(row, 12)),
		})
	}

	return products, nil
}

func parseIngredients(rows [][]interface{}) ([]domain.Ingredient, error) {
	ingredients := []domain.Ingredient{}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		id := cell(row, 0)
		if id == "" {
			continue
		}

		price, err := parsePrice(cell(row, 2))
		if err != nil {
			return nil, rowError(TabIngredients, i, "invalid price: %v", err)
		}

		ingredients = append(ingredients, domain.Ingredient{
			ID:        id,
			Name:      cell(row, 1),
			Price:     price,
			IsDefault: parseBool(cell(row, 3), false),
			Available: parseBool(cell(row, 4), true),
		})
	}

	return ingredients, nil
}

// parseVariantGroups folds one-option-per-row into groups, keeping the
// order groups first appear in.
func parseVariantGroups(rows [][]interface{}) ([]domain.VariantGroup, error) {
	groups := []domain.VariantGroup{}
	index := make(map[string]int)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		groupID := cell(row, 0)
		if groupID == "" {
			continue
		}

		pos, ok := index[groupID]
		if !ok {
			kind := domain.VariantKind(strings.ToLower(cell(row, 2)))
			if kind == "" {
				kind = domain.VariantFlavor
			}
			if kind != domain.VariantFlavor && kind != domain.VariantSize {
				return nil, rowError(TabFlavors, i, "unknown variant kind %q", kind)
			}
			groups = append(groups, domain.VariantGroup{
				ID:      groupID,
				Name:    cell(row, 1),
				Kind:    kind,
				Options: []domain.VariantOption{},
			})
			pos = len(groups) - 1
			index[groupID] = pos
		}

		if optionID := cell(row, 3); optionID != "" {
			groups[pos].Options = append(groups[pos].Options, domain.VariantOption{
				ID:   optionID,
				Name: cell(row, 4),
			})
		}
	}

	return groups, nil
}

// parseCombos reads one slot per row. Name and price come from the first
// row of each combo.
func parseCombos(rows [][]interface{}) ([]domain.ComboDefinition, error) {
	combos := []domain.ComboDefinition{}
	index := make(map[string]int)

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		comboID := cell(row, 0)
		if comboID == "" {
			continue
		}

		pos, ok := index[comboID]
		if !ok {
			price, err := parsePrice(cell(row, 2))
			if err != nil {
				return nil, rowError(TabCombos, i, "invalid price: %v", err)
			}
			combos = append(combos, domain.ComboDefinition{
				ID:        comboID,
				Name:      cell(row, 1),
				Price:     price,
				Available: true,
				Slots:     []domain.ComboSlot{},
			})
			pos = len(combos) - 1
			index[comboID] = pos
		}

		slotID := cell(row, 3)
		if slotID == "" {
			continue
		}

		min, err := parseInt(cell(row, 6), 1)
		if err != nil {
			return nil, rowError(TabCombos, i, "invalid min: %v", err)
		}
		max, err := parseInt(cell(row, 7), min)
		if err != nil {
			return nil, rowError(TabCombos, i, "invalid max: %v", err)
		}

		requirement := domain.SlotOptional
		if parseBool(cell(row, 5), true) {
			requirement = domain.SlotRequired
		}

		combos[pos].Slots = append(combos[pos].Slots, domain.ComboSlot{
			ID:                slotID,
			Title:             cell(row, 4),
			Requirement:       requirement,
			Min:               min,
			Max:               max,
			AllowedProductIDs: parseList(cell(row, 8)),
			DefaultProductID:  cell(row, 9),
		})
	}

	for _, c := range combos {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("combo %q: %w", c.ID, err)
		}
	}

	return combos, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[i]))
}

func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	// sheets may format currency cells
	s = strings.TrimPrefix(s, "$")
	price, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %v", price)
	}
	return price, nil
}

func parseInt(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "x":
		return true
	case "false", "no", "n", "0":
		return false
	}
	return fallback
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func rowError(tab string, row int, format string, args ...interface{}) error {
	return fmt.Errorf("%s row %d: %s", tab, row+1, fmt.Sprintf(format, args...))
}

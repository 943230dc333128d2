package repo

import (
	"context"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
)

// CatalogRepository is read-mostly; ReplaceCatalog is used only by the
// catalog import.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetComboDefinition(ctx context.Context, id string) (*domain.ComboDefinition, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	ListFlavors(ctx context.Context) ([]domain.VariantGroup, error)
	ReplaceCatalog(ctx context.Context, catalog domain.Catalog) error
}

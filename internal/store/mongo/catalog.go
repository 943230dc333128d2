package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CatalogRepository struct {
	storage     *Storage
	products    *mongo.Collection
	combos      *mongo.Collection
	ingredients *mongo.Collection
	variants    *mongo.Collection
}

func NewCatalogRepository(storage *Storage) *CatalogRepository {
	db := storage.Database()
	return &CatalogRepository{
		storage:     storage,
		products:    db.Collection(collectionProducts),
		combos:      db.Collection(collectionCombos),
		ingredients: db.Collection(collectionIngredients),
		variants:    db.Collection(collectionVariantGroups),
	}
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var product domain.Product
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category_id", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.products.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (r *CatalogRepository) GetComboDefinition(ctx context.Context, id string) (*domain.ComboDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var def domain.ComboDefinition
	err := r.combos.FindOne(ctx, bson.M{"_id": id}).Decode(&def)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("combo", id)
		}
		return nil, fmt.Errorf("failed to get combo definition: %w", err)
	}

	return &def, nil
}

func (r *CatalogRepository) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.ingredients.Find(ctx, bson.M{"available": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer cursor.Close(ctx)

	ingredients := []domain.Ingredient{}
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}

	return ingredients, nil
}

// ListFlavors returns every variant group, flavor and size axes alike.
func (r *CatalogRepository) ListFlavors(ctx context.Context) ([]domain.VariantGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.variants.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list variant groups: %w", err)
	}
	defer cursor.Close(ctx)

	groups := []domain.VariantGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode variant groups: %w", err)
	}

	return groups, nil
}

// ReplaceCatalog swaps the whole catalog in one transaction so readers never
// see a half-imported menu.
func (r *CatalogRepository) ReplaceCatalog(ctx context.Context, catalog domain.Catalog) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now()
	products := make([]interface{}, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		p.CreatedAt, p.UpdatedAt = now, now
		products = append(products, p)
	}
	combos := make([]interface{}, 0, len(catalog.Combos))
	for _, c := range catalog.Combos {
		c.CreatedAt, c.UpdatedAt = now, now
		combos = append(combos, c)
	}
	ingredients := make([]interface{}, 0, len(catalog.Ingredients))
	for _, i := range catalog.Ingredients {
		i.UpdatedAt = now
		ingredients = append(ingredients, i)
	}
	groups := make([]interface{}, 0, len(catalog.VariantGroups))
	for _, g := range catalog.VariantGroups {
		g.UpdatedAt = now
		groups = append(groups, g)
	}

	err := r.storage.WithTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := replaceAll(sc, r.products, products); err != nil {
			return fmt.Errorf("failed to replace products: %w", err)
		}
		if err := replaceAll(sc, r.combos, combos); err != nil {
			return fmt.Errorf("failed to replace combos: %w", err)
		}
		if err := replaceAll(sc, r.ingredients, ingredients); err != nil {
			return fmt.Errorf("failed to replace ingredients: %w", err)
		}
		if err := replaceAll(sc, r.variants, groups); err != nil {
			return fmt.Errorf("failed to replace variant groups: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	return nil
}

func replaceAll(sc mongo.SessionContext, coll *mongo.Collection, docs []interface{}) error {
	if _, err := coll.DeleteMany(sc, bson.M{}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(sc, docs)
	return err
}

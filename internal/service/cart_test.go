package service

import (
	"context"
	"testing"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartService(t *testing.T) (*CartService, string) {
	t.Helper()
	catalog := menuFixture()
	svc := NewCartService(newFakeCarts(), catalog, NewConfigurationService(catalog, sequentialIDs("combo"), nopLogger()), sequentialIDs("cart"), nopLogger())

	session, err := svc.Create(context.Background(), cashier)
	require.NoError(t, err)
	assert.Equal(t, "cart-1", session.ID)
	assert.Equal(t, cashier.ID, session.CreatedBy)
	assert.True(t, session.Cart.IsEmpty())

	return svc, session.ID
}

func TestCartAddProductMergesPlainLines(t *testing.T) {
	svc, id := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, id, "soda", 1)
	require.NoError(t, err)
	session, err := svc.AddProduct(ctx, id, "soda", 2)
	require.NoError(t, err)

	require.Len(t, session.Cart.Items, 1)
	assert.Equal(t, 3, session.Cart.Items[0].Quantity)
	assert.Equal(t, 3.75, session.Total())
}

func TestCartAddProductRejects(t *testing.T) {
	svc, id := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, id, "sold", 1)
	assert.True(t, domain.IsValidation(err), "unavailable")

	_, err = svc.AddProduct(ctx, id, "pizza", 1)
	assert.True(t, domain.IsValidation(err), "needs configuration")

	_, err = svc.AddProduct(ctx, id, "soda", 0)
	assert.True(t, domain.IsValidation(err), "quantity")

	_, err = svc.AddProduct(ctx, "missing", "soda", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartAddConfiguredNeverMerges(t *testing.T) {
	svc, id := newCartService(t)
	ctx := context.Background()
	req := ConfigurationRequest{ProductID: "pizza", Ingredients: []string{"cheese", "ham"}}

	_, err := svc.AddConfigured(ctx, id, req)
	require.NoError(t, err)
	session, err := svc.AddConfigured(ctx, id, req)
	require.NoError(t, err)

	require.Len(t, session.Cart.Items, 2)
	assert.Equal(t, 10.50, session.Cart.Items[0].UnitPrice)
	assert.Equal(t, 21.00, session.Total())

	_, err = svc.AddConfigured(ctx, id, ConfigurationRequest{ComboID: "combo-familia", Slots: map[string][]string{"side": {}}})
	assert.True(t, domain.IsValidation(err))
}

func TestCartLineEdits(t *testing.T) {
	svc, id := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, id, "soda", 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, id, "fries", 1)
	require.NoError(t, err)

	session, err := svc.UpdateQuantity(ctx, id, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Cart.Items[0].Quantity, "below one is ignored")

	session, err = svc.UpdateQuantity(ctx, id, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, session.Cart.Items[0].Quantity)

	session, err = svc.SetQuantity(ctx, id, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 6.00, session.Cart.Items[1].TotalPrice)

	_, err = svc.SetQuantity(ctx, id, 1, 0)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.UpdateQuantity(ctx, id, 7, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	session, err = svc.RemoveLine(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, session.Cart.Items, 1)
	assert.Equal(t, "fries", session.Cart.Items[0].ProductID)

	_, err = svc.RemoveLine(ctx, id, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartClearRequiresConfirmation(t *testing.T) {
	svc, id := newCartService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, id, "soda", 1)
	require.NoError(t, err)

	_, err = svc.Clear(ctx, id, false)
	assert.True(t, domain.IsValidation(err))

	session, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, session.Cart.Items, 1)

	session, err = svc.Clear(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, session.Cart.IsEmpty())
}

func TestCartLinesKeepPriceAfterCatalogEdit(t *testing.T) {
	catalog := menuFixture()
	carts := newFakeCarts()
	svc := NewCartService(carts, catalog, NewConfigurationService(catalog, sequentialIDs("combo"), nopLogger()), sequentialIDs("cart"), nopLogger())
	ctx := context.Background()

	session, err := svc.Create(ctx, cashier)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, session.ID, "soda", 2)
	require.NoError(t, err)

	soda := catalog.products["soda"]
	soda.Price = 1.50
	catalog.products["soda"] = soda

	stored, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, stored.Cart.Items, 1)
	assert.Equal(t, 1.25, stored.Cart.Items[0].UnitPrice)
	assert.Equal(t, 2.50, stored.Cart.Items[0].TotalPrice)

	stored, err = svc.AddProduct(ctx, session.ID, "soda", 1)
	require.NoError(t, err)
	require.Len(t, stored.Cart.Items, 1, "the repriced product merges into the existing line")
	assert.Equal(t, 3, stored.Cart.Items[0].Quantity)
	assert.Equal(t, 1.25, stored.Cart.Items[0].UnitPrice)
	assert.Equal(t, 3.75, stored.Cart.Items[0].TotalPrice)
}

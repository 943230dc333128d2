package service

import (
	"context"
	"fmt"

	"github.com/javacachava/pizza-brava-sub000/internal/cart"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"go.uber.org/zap"
)

type CartService struct {
	cartRepo    repo.CartRepository
	catalogRepo repo.CatalogRepository
	configurer  *ConfigurationService
	newID       func() string
	logger      *zap.SugaredLogger
}

func NewCartService(
	cartRepo repo.CartRepository,
	catalogRepo repo.CatalogRepository,
	configurer *ConfigurationService,
	newID func() string,
	logger *zap.SugaredLogger,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		configurer:  configurer,
		newID:       newID,
		logger:      logger,
	}
}

func (s *CartService) Create(ctx context.Context, actor domain.Actor) (*cart.Session, error) {
	session := &cart.Session{
		ID:        s.newID(),
		Cart:      cart.New(),
		CreatedBy: actor.ID,
	}

	if err := s.cartRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Infow("cart created", "cart_id", session.ID, "actor", actor.ID)

	return session, nil
}

func (s *CartService) Get(ctx context.Context, id string) (*cart.Session, error) {
	session, err := s.cartRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return session, nil
}

// AddProduct adds a standard product as a plain line, merging with an
// existing plain line for the same product.
func (s *CartService) AddProduct(ctx context.Context, id, productID string, qty int) (*cart.Session, error) {
	if qty < 1 {
		return nil, domain.NewValidationError("quantity", "quantity must be at least 1")
	}

	product, err := s.catalogRepo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.Available {
		return nil, domain.NewValidationError("product_id", fmt.Sprintf("%s is not available", product.Name))
	}
	if product.Behavior() != domain.BehaviorStandard {
		return nil, domain.NewValidationError("product_id", fmt.Sprintf("%s must be configured before it is added", product.Name))
	}

	return s.update(ctx, id, func(c cart.Cart) (cart.Cart, error) {
		return c.AddOrIncrement(*product, qty, 0), nil
	})
}

// AddConfigured runs the configuration through the selection engine and
// appends the committed line.
func (s *CartService) AddConfigured(ctx context.Context, id string, req ConfigurationRequest) (*cart.Session, error) {
	item, err := s.configurer.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(c cart.Cart) (cart.Cart, error) {
		return c.AddConfiguredItem(item), nil
	})
}

// UpdateQuantity applies delta to a line. Going below one is ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, id string, index, delta int) (*cart.Session, error) {
	return s.update(ctx, id, func(c cart.Cart) (cart.Cart, error) {
		if !c.InRange(index) {
			return c, lineNotFound(index)
		}
		return c.UpdateQuantity(index, delta), nil
	})
}

func (s *CartService) SetQuantity(ctx context.Context, id string, index, qty int) (*cart.Session, error) {
	if qty < 1 {
		return nil, domain.NewValidationError("quantity", "quantity must be at least 1")
	}
	return s.update(ctx, id, func(c cart.Cart) (cart.Cart, error) {
		if !c.InRange(index) {
			return c, lineNotFound(index)
		}
		return c.SetQuantity(index, qty), nil
	})
}

func (s *CartService) RemoveLine(ctx context.Context, id string, index int) (*cart.Session, error) {
	return s.update(ctx, id, func(c cart.Cart) (cart.Cart, error) {
		if !c.InRange(index) {
			return c, lineNotFound(index)
		}
		return c.RemoveAt(index), nil
	})
}

// Clear empties the cart. It must be confirmed explicitly.
func (s *CartService) Clear(ctx context.Context, id string, confirm bool) (*cart.Session, error) {
	if !confirm {
		return nil, domain.NewValidationError("confirm", "clearing the cart must be confirmed")
	}
	return s.update(ctx, id, func(c cart.Cart) (cart.Cart, error) {
		return c.Clear(), nil
	})
}

func (s *CartService) update(ctx context.Context, id string, fn func(cart.Cart) (cart.Cart, error)) (*cart.Session, error) {
	session, err := s.cartRepo.Update(ctx, id, fn)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	return session, nil
}

func lineNotFound(index int) error {
	return domain.NotFound("cart line", fmt.Sprint(index))
}

package repo

import (
	"context"

	"github.com/javacachava/pizza-brava-sub000/internal/cart"
)

// CartRepository stores one cart per session. Update applies fn to the
// latest stored cart; concurrent updates on the same id are serialized.
type CartRepository interface {
	Create(ctx context.Context, session *cart.Session) error
	Get(ctx context.Context, id string) (*cart.Session, error)
	Update(ctx context.Context, id string, fn func(cart.Cart) (cart.Cart, error)) (*cart.Session, error)
	// Claim marks the cart as being checked out and returns it. Until the
	// claim is released, deleted or expired, Update and Claim fail with
	// domain.ErrCheckoutInProgress.
	Claim(ctx context.Context, id string) (*cart.Session, error)
	Release(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

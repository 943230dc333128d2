package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/javacachava/pizza-brava-sub000/internal/cart"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	redis "github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix = "cart:"
	// optimistic update attempts before giving up on a hot cart
	maxUpdateAttempts = 5
)

var ErrCartBusy = errors.New("cart is being modified concurrently")

type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(id string) string {
	return cartKeyPrefix + id
}

func (r *CartRepository) Create(ctx context.Context, session *cart.Session) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	ok, err := r.client.SetNX(ctx, cartKey(session.ID), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	if !ok {
		return fmt.Errorf("cart %q already exists", session.ID)
	}

	return nil
}

func (r *CartRepository) Get(ctx context.Context, id string) (*cart.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := r.client.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound("cart", id)
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return decodeSession(data)
}

// Update runs fn against the stored cart. A cart claimed for checkout is
// not modified.
func (r *CartRepository) Update(ctx context.Context, id string, fn func(cart.Cart) (cart.Cart, error)) (*cart.Session, error) {
	return r.mutate(ctx, id, func(session *cart.Session) error {
		if session.CheckingOut(time.Now()) {
			return domain.ErrCheckoutInProgress
		}
		next, err := fn(session.Cart)
		if err != nil {
			return err
		}
		session.Cart = next
		return nil
	})
}

// Claim marks the cart as being checked out.
func (r *CartRepository) Claim(ctx context.Context, id string) (*cart.Session, error) {
	return r.mutate(ctx, id, func(session *cart.Session) error {
		now := time.Now()
		if session.CheckingOut(now) {
			return domain.ErrCheckoutInProgress
		}
		session.CheckoutAt = &now
		return nil
	})
}

func (r *CartRepository) Release(ctx context.Context, id string) error {
	_, err := r.mutate(ctx, id, func(session *cart.Session) error {
		session.CheckoutAt = nil
		return nil
	})
	return err
}

// mutate applies fn to the stored session under WATCH and writes the result
// in a MULTI block, retrying when another writer got there first. An error
// from fn aborts without writing.
func (r *CartRepository) mutate(ctx context.Context, id string, fn func(*cart.Session) error) (*cart.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key := cartKey(id)
	var updated *cart.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.NotFound("cart", id)
			}
			return err
		}

		session, err := decodeSession(data)
		if err != nil {
			return err
		}

		if err := fn(session); err != nil {
			return err
		}
		session.UpdatedAt = time.Now()

		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrCheckoutInProgress) || domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}

	return nil, ErrCartBusy
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.client.Del(ctx, cartKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if n == 0 {
		return domain.NotFound("cart", id)
	}

	return nil
}

func decodeSession(data []byte) (*cart.Session, error) {
	var session cart.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if session.Cart.Items == nil {
		session.Cart = cart.New()
	}
	return &session, nil
}

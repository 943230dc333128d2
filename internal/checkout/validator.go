// Package checkout decides whether a cart can be submitted as an order of
// the given type.
package checkout

import (
	"fmt"
	"strings"

	"github.com/javacachava/pizza-brava-sub000/internal/cart"
	"github.com/javacachava/pizza-brava-sub000/internal/domain"
)

// Validate returns nil when the cart may be submitted, otherwise the first
// failing rule as a *domain.ValidationError.
func Validate(c cart.Cart, orderType domain.OrderType, meta domain.OrderMeta) error {
	if c.IsEmpty() {
		return domain.NewValidationError("items", "cart empty")
	}

	switch orderType {
	case domain.OrderTypeDineIn:
		return required("table_id", meta.TableID)
	case domain.OrderTypeTakeaway:
		return required("customer_name", meta.CustomerName)
	case domain.OrderTypeDelivery:
		if err := required("customer_name", meta.CustomerName); err != nil {
			return err
		}
		if err := required("phone", meta.Phone); err != nil {
			return err
		}
		return required("address", meta.Address)
	default:
		return domain.NewValidationError("order_type", fmt.Sprintf("unknown order type %q", orderType))
	}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(field, field+" is required")
	}
	return nil
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "mesa"
	OrderTypeTakeaway OrderType = "llevar"
	OrderTypeDelivery OrderType = "pedido"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

// SelectedOption is the snapshot of one chosen variant, ingredient or combo
// pick. Price is informational; OrderItem.UnitPrice already includes it.
type SelectedOption struct {
	ID      string  `bson:"id" json:"id"`
	Name    string  `bson:"name" json:"name"`
	Price   float64 `bson:"price" json:"price"`
	Group   string  `bson:"group,omitempty" json:"group,omitempty"`
	Removed bool    `bson:"removed,omitempty" json:"removed,omitempty"`
}

type ComboItem struct {
	ProductID string `bson:"product_id" json:"product_id"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// ComboInstance is one configured combo. Its items are informational and
// not priced separately.
type ComboInstance struct {
	ID                string      `bson:"id" json:"id"`
	ComboDefinitionID string      `bson:"combo_definition_id" json:"combo_definition_id"`
	Name              string      `bson:"name" json:"name"`
	Price             float64     `bson:"price" json:"price"`
	Items             []ComboItem `bson:"items" json:"items"`
}

// OrderItem is a cart line. Names and prices are copied when the line is
// added and are never re-read from the catalog.
type OrderItem struct {
	ProductID   string           `bson:"product_id,omitempty" json:"product_id,omitempty"`
	ProductName string           `bson:"product_name" json:"product_name"`
	Quantity    int              `bson:"quantity" json:"quantity"`
	UnitPrice   float64          `bson:"unit_price" json:"unit_price"`
	TotalPrice  float64          `bson:"total_price" json:"total_price"`
	Options     []SelectedOption `bson:"options,omitempty" json:"options,omitempty"`
	Comment     string           `bson:"comment,omitempty" json:"comment,omitempty"`
	IsCombo     bool             `bson:"is_combo" json:"is_combo"`
	Combo       *ComboInstance   `bson:"combo,omitempty" json:"combo,omitempty"`

	// PriceAdjustment is the per-unit amount added on top of the product
	// price when a plain line was created.
	PriceAdjustment float64 `bson:"price_adjustment,omitempty" json:"price_adjustment,omitempty"`
}

// Clone returns a deep copy sharing no slices or pointers with i.
func (i OrderItem) Clone() OrderItem {
	out := i
	if i.Options != nil {
		out.Options = append([]SelectedOption(nil), i.Options...)
	}
	if i.Combo != nil {
		combo := *i.Combo
		if i.Combo.Items != nil {
			combo.Items = append([]ComboItem(nil), i.Combo.Items...)
		}
		out.Combo = &combo
	}
	return out
}

// IsPlain reports a line with no configuration attached.
func (i OrderItem) IsPlain() bool {
	return !i.IsCombo && len(i.Options) == 0 && i.Comment == ""
}

// OrderMeta carries the order-type dependent fields collected at checkout.
type OrderMeta struct {
	TableID      string `json:"table_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

type Customer struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `bson:"order_number" json:"order_number"`
	Items       []OrderItem        `bson:"items" json:"items"`
	Subtotal    float64            `bson:"subtotal" json:"subtotal"`
	Tax         float64            `bson:"tax" json:"tax"`
	Total       float64            `bson:"total" json:"total"`
	Status      OrderStatus        `bson:"status" json:"status"`
	OrderType   OrderType          `bson:"order_type" json:"order_type"`
	TableID     string             `bson:"table_id,omitempty" json:"table_id,omitempty"`
	Customer    *Customer          `bson:"customer,omitempty" json:"customer,omitempty"`
	CreatedBy   string             `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleReception Role = "reception"
	RoleKitchen   Role = "kitchen"
)

// Actor is the authenticated user as supplied by the auth collaborator.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

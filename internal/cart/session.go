package cart

import "time"

// CheckoutClaimTTL bounds how long a checkout claim holds the cart. A claim
// left by a crashed submission expires after it.
const CheckoutClaimTTL = time.Minute

// Session is a cart owned by one terminal session.
type Session struct {
	ID         string     `json:"id"`
	Cart       Cart       `json:"cart"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	CheckoutAt *time.Time `json:"checkout_at,omitempty"`
}

// Total is the cart total at rest.
func (s Session) Total() float64 {
	return s.Cart.Total()
}

// CheckingOut reports a live checkout claim at now.
func (s Session) CheckingOut(now time.Time) bool {
	return s.CheckoutAt != nil && now.Sub(*s.CheckoutAt) < CheckoutClaimTTL
}

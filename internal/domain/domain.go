package domain

import "time"

// ActorCategory distinguishes the two kinds of authenticated actors.
type ActorCategory string

const (
	CategoryAdministrator ActorCategory = "administrator"
	CategoryUser          ActorCategory = "user"
)

// Product is the catalog record as persisted in the Products collection.
// Stock is the authoritative figure; carts never hold it, they only hold a
// reservation intent that is re-checked at checkout.
type Product struct {
	ID          string  `json:"_id" bson:"-"`
	Name        string  `json:"name" bson:"name"`
	Category    string  `json:"category" bson:"category"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price" bson:"price"`
	Stock       int     `json:"stock" bson:"stock"`
}

// CartItem is a line item with the price snapshotted at add-time.
type CartItem struct {
	ProductID   string  `json:"_id" bson:"product_id"`
	Name        string  `json:"name" bson:"name"`
	Category    string  `json:"category" bson:"category"`
	Description string  `json:"description" bson:"description"`
	Price       float64 `json:"price" bson:"price"`
	Quantity    int     `json:"quantity" bson:"quantity"`
}

// Subtotal is the item's contribution to the cart total.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart accumulates line items keyed by product id. Total is maintained
// incrementally; after any total-decreasing mutation it is clamped at zero
// to absorb floating-point drift.
type Cart struct {
	Items map[string]*CartItem `json:"items"`
	Total float64              `json:"total"`
}

func NewCart() *Cart {
	return &Cart{Items: make(map[string]*CartItem)}
}

// Clone deep-copies the cart so callers can serialize it outside whatever
// lock guards the original.
func (c *Cart) Clone() *Cart {
	out := &Cart{
		Items: make(map[string]*CartItem, len(c.Items)),
		Total: c.Total,
	}
	for id, item := range c.Items {
		copied := *item
		out.Items[id] = &copied
	}
	return out
}

// ClampTotal normalizes a drifted negative total to exactly zero.
func (c *Cart) ClampTotal() {
	if c.Total < 0 {
		c.Total = 0
	}
}

// Receipt is the immutable record of a committed checkout. Message is set
// only when one or more cart items were skipped for lack of stock.
type Receipt struct {
	Items     map[string]CartItem `json:"items" bson:"items"`
	Total     float64             `json:"total" bson:"total"`
	Message   string              `json:"message,omitempty" bson:"message,omitempty"`
	Timestamp time.Time           `json:"timestamp" bson:"timestamp"`
}

// Account is the persisted user/administrator record in the Users
// collection. Administrators authenticate by username, users by email.
// Orders is append-only, ordered by commit time.
type Account struct {
	Name     string        `json:"name,omitempty" bson:"name,omitempty"`
	Username string        `json:"username,omitempty" bson:"username,omitempty"`
	Email    string        `json:"email,omitempty" bson:"email,omitempty"`
	Password string        `json:"-" bson:"password"`
	SSN      string        `json:"ssn,omitempty" bson:"ssn,omitempty"`
	Category ActorCategory `json:"category" bson:"category"`
	Orders   []Receipt     `json:"orders,omitempty" bson:"orders,omitempty"`
}

// Handle returns the login handle an account presents on subsequent
// requests: username for administrators, email for users.
func (a *Account) Handle() string {
	if a.Category == CategoryAdministrator {
		return a.Username
	}
	return a.Email
}

// RestrictedCategories are the product categories an actor under 18 may not
// purchase.
var RestrictedCategories = map[string]struct{}{
	"analgesic":  {},
	"antibiotic": {},
	"antiseptic": {},
}

// Restricted reports whether a product category is age-gated.
func Restricted(category string) bool {
	_, ok := RestrictedCategories[category]
	return ok
}

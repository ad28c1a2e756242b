// Package catalog is the gateway to the persisted product and account
// records. The core depends only on the Gateway contract; the MongoDB
// implementation and the Redis read-through cache both satisfy it.
package catalog

import (
	"context"
	"errors"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidProductID marks a malformed identifier; it surfaces as a
	// persistence failure, not a validation one.
	ErrInvalidProductID = errors.New("malformed product id")
)

// HandleKind selects the credential field an actor logs in with.
type HandleKind string

const (
	HandleEmail    HandleKind = "email"
	HandleUsername HandleKind = "username"
)

// Filter selects products by exactly one criterion. Name and Category
// match as case-insensitive substrings; results are sorted by ascending
// price.
type Filter struct {
	ID       string
	Name     string
	Category string
}

// ProductUpdate is a partial edit of a catalog record; nil fields are left
// untouched.
type ProductUpdate struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	Stock       *int
}

// Empty reports whether the update touches no field at all.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Category == nil && u.Description == nil &&
		u.Price == nil && u.Stock == nil
}

// Gateway is the storage contract the engines consume. DecrementStock must
// be a single indivisible conditional update relative to concurrent
// decrements on the same product.
type Gateway interface {
	FindProduct(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, f Filter) ([]domain.Product, error)
	InsertProduct(ctx context.Context, p *domain.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, u ProductUpdate) error
	DeleteProduct(ctx context.Context, id string) error

	// DecrementStock atomically subtracts qty from the product's stock,
	// refusing with ErrInsufficientStock when the current figure is below
	// qty and ErrProductNotFound when the product is absent.
	DecrementStock(ctx context.Context, id string, qty int) error

	FindAccountByHandle(ctx context.Context, handle string) (*domain.Account, error)
	FindAccountByLogin(ctx context.Context, kind HandleKind, handle, password string) (*domain.Account, error)
	AccountExists(ctx context.Context, email, ssn string) (bool, error)
	InsertAccount(ctx context.Context, a *domain.Account) error
	AppendOrder(ctx context.Context, handle string, r domain.Receipt) error
	DeleteAccount(ctx context.Context, handle string) error
}

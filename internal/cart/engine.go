// Package cart mutates the cart embedded in a user session: add, view and
// remove line items, maintaining the running-total invariant. Stock is
// checked against the live catalog figure at add-time only; nothing is
// reserved between add and checkout.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/policy"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrStockConflict   = errors.New("requested quantity exceeds available stock")
	ErrAgeRestricted   = errors.New("product category is age restricted")
)

// adultAge is the minimum derived age for purchasing restricted categories.
const adultAge = 18

type Engine struct {
	gateway catalog.Gateway
	now     func() time.Time
}

func NewEngine(gateway catalog.Gateway) *Engine {
	return &Engine{gateway: gateway, now: time.Now}
}

// AddItem puts qty units of a product into the session's cart. The price is
// snapshotted from the catalog when the product first enters the cart and
// is not re-read afterwards. The prospective quantity is validated against
// the live catalog stock; exceeding it is a conflict, not a reservation.
func (e *Engine) AddItem(ctx context.Context, sess *session.Session, productID string, qty int) (*domain.Cart, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := e.gateway.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := e.checkAgeGate(ctx, sess, product); err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	cart := sess.Cart
	item, present := cart.Items[productID]

	prospective := qty
	if present {
		prospective += item.Quantity
	}
	if prospective > product.Stock {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrStockConflict, prospective, product.Stock)
	}

	if present {
		item.Quantity = prospective
	} else {
		item = &domain.CartItem{
			ProductID:   productID,
			Name:        product.Name,
			Category:    product.Category,
			Description: product.Description,
			Price:       product.Price,
			Quantity:    qty,
		}
		cart.Items[productID] = item
	}

	cart.Total += float64(qty) * item.Price
	return cart.Clone(), nil
}

// View returns a read-only projection of the session's cart.
func (e *Engine) View(sess *session.Session) *domain.Cart {
	sess.Lock()
	defer sess.Unlock()
	return sess.Cart.Clone()
}

// RemoveItem deletes a line item and subtracts its subtotal, clamping the
// total at zero.
func (e *Engine) RemoveItem(sess *session.Session, productID string) (*domain.Cart, error) {
	sess.Lock()
	defer sess.Unlock()

	cart := sess.Cart
	item, ok := cart.Items[productID]
	if !ok {
		return nil, ErrItemNotFound
	}

	cart.Total -= item.Subtotal()
	cart.ClampTotal()
	delete(cart.Items, productID)
	return cart.Clone(), nil
}

// checkAgeGate refuses restricted categories to actors whose SSN-derived
// age is under 18. The SSN comes from the persisted account record, not
// the session.
func (e *Engine) checkAgeGate(ctx context.Context, sess *session.Session, product *domain.Product) error {
	if !domain.Restricted(product.Category) {
		return nil
	}

	account, err := e.gateway.FindAccountByHandle(ctx, sess.Handle)
	if err != nil {
		return err
	}
	if policy.DeriveAge(account.SSN, e.now()) < adultAge {
		return fmt.Errorf("%w: %s", ErrAgeRestricted, product.Category)
	}
	return nil
}

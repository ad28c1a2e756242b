// Package checkout commits a cart into an immutable receipt against the
// live catalog. The whole transition runs synchronously within one
// request: per item, a single conditional decrement either claims the
// stock or the item is skipped and left in the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/policy"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

var ErrInvalidCredit = errors.New("credit number must be a 16-digit numeric string")

// partialMessage is the advisory attached when one or more items were
// skipped for lack of stock.
const partialMessage = "some items were unavailable in the requested quantity and remain in your cart"

type Engine struct {
	gateway   catalog.Gateway
	publisher *Publisher // optional, nil disables event emission
	log       *slog.Logger
	now       func() time.Time
}

func NewEngine(gateway catalog.Gateway, publisher *Publisher, log *slog.Logger) *Engine {
	return &Engine{
		gateway:   gateway,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Checkout converts the session's cart into a receipt. The credit format
// check runs before any state transition; after that, insufficient stock
// is never an error: the item is skipped, flagged, and kept in the cart.
// An empty cart commits to a zero-total receipt with no advisory.
func (e *Engine) Checkout(ctx context.Context, sess *session.Session, credit string) (*domain.Receipt, error) {
	if !policy.ValidCreditNumber(credit) {
		return nil, ErrInvalidCredit
	}

	sess.Lock()
	defer sess.Unlock()

	cart := sess.Cart
	receipt := &domain.Receipt{Items: make(map[string]domain.CartItem)}

	// Stable commit order: ascending product id.
	ids := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	skipped := false
	for _, id := range ids {
		item := cart.Items[id]

		err := e.gateway.DecrementStock(ctx, id, item.Quantity)
		switch {
		case err == nil:
		case errors.Is(err, catalog.ErrInsufficientStock), errors.Is(err, catalog.ErrProductNotFound):
			// The item stays in the cart untouched.
			skipped = true
			continue
		default:
			return nil, fmt.Errorf("stock decrement failed for %s: %w", id, err)
		}

		receipt.Items[id] = *item
		receipt.Total += item.Subtotal()
		cart.Total -= item.Subtotal()
		cart.ClampTotal()
		delete(cart.Items, id)
	}

	if skipped {
		receipt.Message = partialMessage
	}
	receipt.Timestamp = e.now()

	if err := e.gateway.AppendOrder(ctx, sess.Handle, *receipt); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	if e.publisher != nil {
		if err := e.publisher.PublishReceipt(ctx, sess.Handle, receipt); err != nil {
			e.log.Warn("receipt event publish failed", "handle", sess.Handle, "error", err)
		}
	}

	return receipt, nil
}

// OrderHistory returns the account's committed receipts in commit order.
func (e *Engine) OrderHistory(ctx context.Context, sess *session.Session) ([]domain.Receipt, error) {
	account, err := e.gateway.FindAccountByHandle(ctx, sess.Handle)
	if err != nil {
		return nil, err
	}
	if account.Orders == nil {
		return []domain.Receipt{}, nil
	}
	return account.Orders, nil
}

// Package allocator hands out premium account codes to orders.
//
// Every unit goes through the store's claim-one primitive, a single conditional
// update that flips one unassigned row to assigned. Two allocations racing for the
// same product can never receive the same row. There is no unclaim: a unit taken
// for an order stays with that order even if the delivery later fails.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DigiMart/app/dal/premiumcode"

	"github.com/zeromicro/go-zero/core/logx"
)

// ClaimStore is the slice of the premium code table the allocator needs.
type ClaimStore interface {
	ClaimOne(ctx context.Context, productId, orderId int64, email string, at time.Time) (*premiumcode.PremiumCodes, error)
	ListAssignedToOrder(ctx context.Context, productId, orderId int64) ([]*premiumcode.PremiumCodes, error)
}

type Allocator struct {
	store ClaimStore
	now   func() time.Time
}

func New(store ClaimStore) *Allocator {
	return &Allocator{store: store, now: time.Now}
}

// Allocate claims up to count units of productID for the order. A short pool yields a
// shorter result and no error; only storage failures are returned.
func (a *Allocator) Allocate(ctx context.Context, productID int64, count int, claimantEmail string, orderID int64) ([]*premiumcode.PremiumCodes, error) {
	if count <= 0 {
		return nil, nil
	}
	claimed := make([]*premiumcode.PremiumCodes, 0, count)
	for i := 0; i < count; i++ {
		code, err := a.store.ClaimOne(ctx, productID, orderID, claimantEmail, a.now())
		if errors.Is(err, premiumcode.ErrNoneAvailable) {
			logx.WithContext(ctx).Infow("premium pool exhausted",
				logx.Field("productId", productID),
				logx.Field("orderId", orderID),
				logx.Field("requested", count),
				logx.Field("claimed", len(claimed)))
			break
		}
		if err != nil {
			return claimed, fmt.Errorf("claim premium code for product %d: %w", productID, err)
		}
		claimed = append(claimed, code)
	}
	return claimed, nil
}

// AssignedToOrder lists the units of productID an earlier attempt already gave the order.
func (a *Allocator) AssignedToOrder(ctx context.Context, productID, orderID int64) ([]*premiumcode.PremiumCodes, error) {
	codes, err := a.store.ListAssignedToOrder(ctx, productID, orderID)
	if err != nil {
		return nil, fmt.Errorf("list codes held by order %d: %w", orderID, err)
	}
	return codes, nil
}

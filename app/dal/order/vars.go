package order

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	ErrNotFound   = sqlx.ErrNotFound
	ErrClaimLost  = errors.New("order is no longer held for delivery")
	ErrEmptyItems = errors.New("order has no items")
)

const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusDelivering = "delivering"
	StatusDelivered  = "delivered"
	StatusFailed     = "failed"
)

package premiumcode

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	ErrNotFound      = sqlx.ErrNotFound
	ErrNoneAvailable = errors.New("no unassigned code left for product")
	ErrEmptyBatch    = errors.New("no codes to insert")
)

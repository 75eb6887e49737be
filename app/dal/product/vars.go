package product

import "github.com/zeromicro/go-zero/core/stores/sqlx"

var ErrNotFound = sqlx.ErrNotFound

const (
	TypeEbook          = "ebook"
	TypePremiumAccount = "premium_account"
)

package cart

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ CartModel = (*customCartModel)(nil)

type (
	// CartModel is an interface to be customized, add more methods here,
	// and implement the added methods in customCartModel.
	CartModel interface {
		cartModel
		// ClearByUser removes every line of the user's cart and reports how many went.
		ClearByUser(ctx context.Context, userId int64) (int64, error)
	}

	customCartModel struct {
		*defaultCartModel
	}
)

// NewCartModel returns a model for the database table.
func NewCartModel(conn sqlx.SqlConn) CartModel {
	return &customCartModel{
		defaultCartModel: newCartModel(conn),
	}
}

func (m *customCartModel) ClearByUser(ctx context.Context, userId int64) (int64, error) {
	query := fmt.Sprintf("delete from %s where `user_id` = ?", m.table)
	res, err := m.conn.ExecCtx(ctx, query, userId)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

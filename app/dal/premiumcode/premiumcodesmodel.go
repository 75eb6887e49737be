package premiumcode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

const insertChunk = 500

var _ PremiumCodesModel = (*customPremiumCodesModel)(nil)

type (
	// PremiumCodesModel is an interface to be customized, add more methods here,
	// and implement the added methods in customPremiumCodesModel.
	PremiumCodesModel interface {
		premiumCodesModel
		// ClaimOne atomically assigns the lowest unassigned code of a product.
		// Returns ErrNoneAvailable when the pool is empty.
		ClaimOne(ctx context.Context, productId, orderId int64, email string, at time.Time) (*PremiumCodes, error)
		ListAssignedToOrder(ctx context.Context, productId, orderId int64) ([]*PremiumCodes, error)
		InsertBatch(ctx context.Context, productId int64, encrypted []string) (int64, error)
		CountAvailable(ctx context.Context, productId int64) (int64, error)
	}

	customPremiumCodesModel struct {
		*defaultPremiumCodesModel
	}
)

// NewPremiumCodesModel returns a model for the database table.
func NewPremiumCodesModel(conn sqlx.SqlConn) PremiumCodesModel {
	return &customPremiumCodesModel{
		defaultPremiumCodesModel: newPremiumCodesModel(conn),
	}
}

func (m *customPremiumCodesModel) ClaimOne(ctx context.Context, productId, orderId int64, email string, at time.Time) (*PremiumCodes, error) {
	// LAST_INSERT_ID(expr) hands the updated row id back on the same statement result.
	query := fmt.Sprintf("update %s set `is_assigned` = 1, `assigned_order_id` = ?, `assigned_email` = ?, `assigned_at` = ?, `id` = LAST_INSERT_ID(`id`) where `product_id` = ? and `is_assigned` = 0 order by `id` limit 1", m.table)
	res, err := m.conn.ExecCtx(ctx, query, orderId, email, at, productId)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNoneAvailable
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return m.FindOne(ctx, id)
}

func (m *customPremiumCodesModel) ListAssignedToOrder(ctx context.Context, productId, orderId int64) ([]*PremiumCodes, error) {
	var rows []*PremiumCodes
	query := fmt.Sprintf("select %s from %s where `product_id` = ? and `assigned_order_id` = ? and `is_assigned` = 1 order by `id` asc", premiumCodesRows, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, productId, orderId); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customPremiumCodesModel) InsertBatch(ctx context.Context, productId int64, encrypted []string) (int64, error) {
	if len(encrypted) == 0 {
		return 0, ErrEmptyBatch
	}
	var inserted int64
	err := m.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		for start := 0; start < len(encrypted); start += insertChunk {
			end := min(start+insertChunk, len(encrypted))
			chunk := encrypted[start:end]
			args := make([]any, 0, len(chunk)*2)
			for _, code := range chunk {
				args = append(args, productId, code)
			}
			query := fmt.Sprintf("insert into %s (`product_id`,`encrypted_code`) values %s", m.table, placeholders(len(chunk), "(?, ?)"))
			res, err := session.ExecCtx(ctx, query, args...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (m *customPremiumCodesModel) CountAvailable(ctx context.Context, productId int64) (int64, error) {
	var total int64
	query := fmt.Sprintf("select count(1) from %s where `product_id` = ? and `is_assigned` = 0", m.table)
	if err := m.conn.QueryRowCtx(ctx, &total, query, productId); err != nil {
		return 0, err
	}
	return total, nil
}

func placeholders(n int, unit string) string {
	if n <= 0 {
		return ""
	}
	var builder strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(unit)
	}
	return builder.String()
}

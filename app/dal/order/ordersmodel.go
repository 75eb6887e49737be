package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ OrdersModel = (*customOrdersModel)(nil)

type (
	// OrdersModel is an interface to be customized, add more methods here,
	// and implement the added methods in customOrdersModel.
	OrdersModel interface {
		ordersModel
		// CreateWithItems inserts the order and its items in one transaction.
		CreateWithItems(ctx context.Context, data *Orders, items []*OrderItems) error
		// ClaimForDelivery moves a claimable order into delivering. A delivering order whose
		// claim started before staleBefore is taken over. On success the returned time is
		// the claim's fencing token, the delivering_at it wrote.
		ClaimForDelivery(ctx context.Context, id int64, now, staleBefore time.Time) (time.Time, bool, error)
		// ReleaseClaim puts the order back to pending if the claim is still the holder's.
		ReleaseClaim(ctx context.Context, id int64, claimedAt time.Time) error
		// MarkDelivered commits the delivery. ErrClaimLost when the order left delivering
		// or another caller took the claim over.
		MarkDelivered(ctx context.Context, id int64, claimedAt time.Time, info DeliveredInfo) error
		ListDeliveredByEmail(ctx context.Context, email string, limit int64) ([]*Orders, error)
	}

	customOrdersModel struct {
		*defaultOrdersModel
	}

	DeliveredInfo struct {
		PaymentRaw  string
		DeliveredAt time.Time
		MessageId   string
		CodeIds     []int64
	}
)

// NewOrdersModel returns a model for the database table.
func NewOrdersModel(conn sqlx.SqlConn) OrdersModel {
	return &customOrdersModel{
		defaultOrdersModel: newOrdersModel(conn),
	}
}

func (m *customOrdersModel) CreateWithItems(ctx context.Context, data *Orders, items []*OrderItems) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	orderQuery := fmt.Sprintf("insert into %s (%s) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", m.table, ordersRowsExpectAutoSet)
	itemQuery := fmt.Sprintf("insert into %s (%s) values (?, ?, ?, ?, ?)", "`order_items`", orderItemsRowsExpectAutoSet)

	return m.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		if _, err := session.ExecCtx(ctx, orderQuery, data.Id, data.UserId, data.Email, data.Status, data.PaymentProvider, data.PaymentSessionId, data.PaymentAmount, data.PaymentCurrency, data.PaymentRaw, data.DeliveringAt, data.DeliveredAt, data.DeliveredMessageId, data.DeliveredCodeIds); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i, item := range items {
			item.OrderId = data.Id
			item.Position = int64(i)
			if _, err := session.ExecCtx(ctx, itemQuery, item.OrderId, item.Position, item.ProductId, item.Quantity, item.Snapshot); err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
		}
		return nil
	})
}

// ClaimToken truncates to what a DATETIME(6) column stores, so the token compares equal
// once written.
func ClaimToken(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

func (m *customOrdersModel) ClaimForDelivery(ctx context.Context, id int64, now, staleBefore time.Time) (time.Time, bool, error) {
	claimedAt := ClaimToken(now)
	claimable := []string{StatusPending, StatusPaid}
	args := make([]any, 0, len(claimable)+5)
	args = append(args, StatusDelivering, claimedAt, id)
	for _, s := range claimable {
		args = append(args, s)
	}
	args = append(args, StatusDelivering, staleBefore)

	query := fmt.Sprintf("update %s set `status` = ?, `delivering_at` = ? where `id` = ? and (`status` in (%s) or (`status` = ? and `delivering_at` < ?))",
		m.table, placeholders(len(claimable)))
	result, err := m.conn.ExecCtx(ctx, query, args...)
	if err != nil {
		return time.Time{}, false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, false, err
	}
	if affected == 0 {
		return time.Time{}, false, nil
	}
	return claimedAt, true, nil
}

func (m *customOrdersModel) ReleaseClaim(ctx context.Context, id int64, claimedAt time.Time) error {
	query := fmt.Sprintf("update %s set `status` = ?, `delivering_at` = null where `id` = ? and `status` = ? and `delivering_at` = ?", m.table)
	result, err := m.conn.ExecCtx(ctx, query, StatusPending, id, StatusDelivering, claimedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClaimLost
	}
	return nil
}

func (m *customOrdersModel) MarkDelivered(ctx context.Context, id int64, claimedAt time.Time, info DeliveredInfo) error {
	codeIds := info.CodeIds
	if codeIds == nil {
		codeIds = []int64{}
	}
	encoded, err := json.Marshal(codeIds)
	if err != nil {
		return err
	}
	raw := sql.NullString{String: info.PaymentRaw, Valid: info.PaymentRaw != ""}

	query := fmt.Sprintf("update %s set `status` = ?, `payment_raw` = ?, `delivered_at` = ?, `delivered_message_id` = ?, `delivered_code_ids` = ?, `delivering_at` = null where `id` = ? and `status` = ? and `delivering_at` = ?", m.table)
	result, err := m.conn.ExecCtx(ctx, query, StatusDelivered, raw, info.DeliveredAt, info.MessageId, string(encoded), id, StatusDelivering, claimedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrClaimLost
	}
	return nil
}

func (m *customOrdersModel) ListDeliveredByEmail(ctx context.Context, email string, limit int64) ([]*Orders, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*Orders
	query := fmt.Sprintf("select %s from %s where `email` = ? and `status` = ? order by `delivered_at` desc limit ?", ordersRows, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, email, StatusDelivered, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeliveredCodes decodes the code ids stored when the order was delivered.
func (o *Orders) DeliveredCodes() []int64 {
	if !o.DeliveredCodeIds.Valid || o.DeliveredCodeIds.String == "" {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(o.DeliveredCodeIds.String), &ids); err != nil {
		return nil
	}
	return ids
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}

	var builder strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteByte('?')
	}
	return builder.String()
}

package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ OrderItemsModel = (*customOrderItemsModel)(nil)

type (
	// OrderItemsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customOrderItemsModel.
	OrderItemsModel interface {
		orderItemsModel
		// ListByOrder returns items for an order in checkout order
		ListByOrder(ctx context.Context, orderId int64) ([]*OrderItems, error)
		ListByOrderIds(ctx context.Context, orderIds []int64) ([]*OrderItems, error)
	}

	customOrderItemsModel struct {
		*defaultOrderItemsModel
	}

	// ItemSnapshot is the product as it looked when the order was placed.
	ItemSnapshot struct {
		Name     string          `json:"name"`
		Type     string          `json:"type"`
		Price    decimal.Decimal `json:"price"`
		FileInfo *FileInfo       `json:"fileInfo,omitempty"`
	}

	FileInfo struct {
		FileId   string `json:"fileId,omitempty"`
		FileName string `json:"fileName"`
		BucketId string `json:"bucketId,omitempty"`
	}
)

// NewOrderItemsModel returns a model for the database table.
func NewOrderItemsModel(conn sqlx.SqlConn) OrderItemsModel {
	return &customOrderItemsModel{
		defaultOrderItemsModel: newOrderItemsModel(conn),
	}
}

func (m *customOrderItemsModel) ListByOrder(ctx context.Context, orderId int64) ([]*OrderItems, error) {
	var rows []*OrderItems
	query := fmt.Sprintf("select %s from %s where `order_id` = ? order by `position` asc, `id` asc", orderItemsRows, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, orderId); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *customOrderItemsModel) ListByOrderIds(ctx context.Context, orderIds []int64) ([]*OrderItems, error) {
	if len(orderIds) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(orderIds))
	for _, id := range orderIds {
		args = append(args, id)
	}
	var rows []*OrderItems
	query := fmt.Sprintf("select %s from %s where `order_id` in (%s) order by `order_id` asc, `position` asc", orderItemsRows, m.table, placeholders(len(orderIds)))
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// DecodeSnapshot returns the stored snapshot, or nil when none was recorded or it cannot be read.
func (i *OrderItems) DecodeSnapshot() *ItemSnapshot {
	if !i.Snapshot.Valid || i.Snapshot.String == "" {
		return nil
	}
	var snap ItemSnapshot
	if err := json.Unmarshal([]byte(i.Snapshot.String), &snap); err != nil {
		return nil
	}
	return &snap
}

// EncodeSnapshot stores snap on the item.
func (i *OrderItems) EncodeSnapshot(snap *ItemSnapshot) error {
	if snap == nil {
		i.Snapshot.Valid = false
		return nil
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	i.Snapshot.String = string(b)
	i.Snapshot.Valid = true
	return nil
}

package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ ProductsModel = (*customProductsModel)(nil)

type (
	// ProductsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customProductsModel.
	ProductsModel interface {
		productsModel
		FindAllProductId(ctx context.Context) ([]int64, error)
		// FindByIds loads several products in one round trip, bypassing the row cache.
		FindByIds(ctx context.Context, ids []int64) ([]*Products, error)
	}

	customProductsModel struct {
		*defaultProductsModel
	}
)

// NewProductsModel returns a model for the database table.
func NewProductsModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) ProductsModel {
	return &customProductsModel{
		defaultProductsModel: newProductsModel(conn, c, opts...),
	}
}

func (m *customProductsModel) FindAllProductId(ctx context.Context) ([]int64, error) {
	query := fmt.Sprintf("SELECT `id` FROM %s", m.table)
	var ids []int64
	if err := m.QueryRowsNoCacheCtx(ctx, &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}

func (m *customProductsModel) FindByIds(ctx context.Context, ids []int64) ([]*Products, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	query := fmt.Sprintf("select %s from %s where `id` in (%s)", productsRows, m.table, strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","))
	var rows []*Products
	if err := m.QueryRowsNoCacheCtx(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *Products) HasFile() bool {
	return p.FileName.Valid && p.FileName.String != ""
}

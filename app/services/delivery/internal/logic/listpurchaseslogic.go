package logic

import (
	"context"

	"DigiMart/app/common/consts/errno"
	"DigiMart/app/common/util"
	orderdal "DigiMart/app/dal/order"
	productdal "DigiMart/app/dal/product"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/samber/lo"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/x/errors"
)

const (
	purchaseHistoryLimit = 200
	purchaseDateLayout   = "2006-01-02"
	accountStatusActive  = "Active"
)

type ListPurchasesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListPurchasesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListPurchasesLogic {
	return &ListPurchasesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ListPurchases lists what the caller's email has received, newest order first.
func (l *ListPurchasesLogic) ListPurchases() (*types.PurchasesResponse, error) {
	id, ok := util.IdentityFromCtx(l.ctx)
	if !ok || id.Email == "" {
		return nil, errors.New(errno.TokenInvalid, "unauthorized")
	}

	orders, err := l.svcCtx.Orders.ListDeliveredByEmail(l.ctx, id.Email, purchaseHistoryLimit)
	if err != nil {
		l.Errorw("list delivered orders failed", logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "Failed to fetch purchases.")
	}
	resp := &types.PurchasesResponse{
		Success: true,
		Purchases: types.Purchases{
			Books:           []types.PurchasedBook{},
			PremiumAccounts: []types.PurchasedAccount{},
		},
	}
	if len(orders) == 0 {
		return resp, nil
	}

	items, err := l.svcCtx.OrderItems.ListByOrderIds(l.ctx, lo.Map(orders, func(o *orderdal.Orders, _ int) int64 { return o.Id }))
	if err != nil {
		l.Errorw("list order items failed", logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "Failed to fetch purchases.")
	}
	live, err := l.svcCtx.Products.FindByIds(l.ctx, lo.Uniq(lo.Map(items, func(it *orderdal.OrderItems, _ int) int64 { return it.ProductId })))
	if err != nil {
		l.Errorw("load purchased products failed", logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "Failed to fetch purchases.")
	}
	products := lo.KeyBy(live, func(p *productdal.Products) int64 { return p.Id })
	byOrder := lo.GroupBy(items, func(it *orderdal.OrderItems) int64 { return it.OrderId })

	for _, o := range orders {
		at := o.DeliveredAt.Time
		for _, it := range byOrder[o.Id] {
			kind, name, _ := resolveItem(it.DecodeSnapshot(), products[it.ProductId])
			switch kind {
			case productdal.TypeEbook:
				resp.Purchases.Books = append(resp.Purchases.Books, types.PurchasedBook{
					Id:            it.ProductId,
					OrderId:       o.Id,
					Title:         name,
					PurchasedDate: at.Format(purchaseDateLayout),
				})
			case productdal.TypePremiumAccount:
				resp.Purchases.PremiumAccounts = append(resp.Purchases.PremiumAccounts, types.PurchasedAccount{
					Id:          it.ProductId,
					OrderId:     o.Id,
					Service:     name,
					Status:      accountStatusActive,
					AssignedAt:  at.Format(purchaseDateLayout),
					RenewalDate: at.AddDate(1, 0, 0).Format(purchaseDateLayout),
				})
			}
		}
	}
	return resp, nil
}

package logic

import (
	"context"
	"database/sql"
	stderrors "errors"
	"net/mail"
	"strconv"
	"strings"

	"DigiMart/app/common/consts/errno"
	"DigiMart/app/common/money"
	"DigiMart/app/common/snowflake"
	"DigiMart/app/common/util"
	orderdal "DigiMart/app/dal/order"
	productdal "DigiMart/app/dal/product"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/x/errors"
)

const mysqlDuplicateEntry = 1062

type CheckoutLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCheckoutLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CheckoutLogic {
	return &CheckoutLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Checkout creates a pending order with every item frozen as it looks right now.
// Items naming unknown products are dropped.
func (l *CheckoutLogic) Checkout(req *types.CheckoutRequest) (*types.CheckoutResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || len(req.Items) == 0 {
		return nil, errors.New(errno.InvalidParam, "email and items required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.New(errno.InvalidParam, "invalid email")
	}
	unit, err := money.ParseCurrency(lo.Ternary(req.Currency != "", req.Currency, l.svcCtx.Config.Delivery.Currency))
	if err != nil {
		return nil, errors.New(errno.InvalidParam, err.Error())
	}

	products, err := l.loadProducts(req.Items)
	if err != nil {
		l.Errorw("checkout: load products failed", logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "Server error during checkout")
	}

	total := decimal.Zero
	items := make([]*orderdal.OrderItems, 0, len(req.Items))
	for _, it := range req.Items {
		p, ok := products[it.ProductId]
		if !ok {
			continue
		}
		qty := lo.Ternary(it.Quantity > 0, it.Quantity, 1)
		item := &orderdal.OrderItems{ProductId: p.Id, Quantity: qty}
		if err := item.EncodeSnapshot(snapshotOf(p)); err != nil {
			return nil, errors.New(errno.InternalError, "Server error during checkout")
		}
		items = append(items, item)
		total = total.Add(p.Price.Mul(decimal.NewFromInt(qty)))
	}
	if len(items) == 0 {
		return nil, errors.New(errno.ProductNotFound, "no purchasable items")
	}

	order := &orderdal.Orders{
		Id:               snowflake.Next(),
		Email:            email,
		Status:           orderdal.StatusPending,
		PaymentProvider:  l.svcCtx.Config.Delivery.Provider,
		PaymentSessionId: lo.Ternary(strings.TrimSpace(req.PaymentSessionId) != "", strings.TrimSpace(req.PaymentSessionId), uuid.NewString()),
		PaymentAmount:    total.Round(2),
		PaymentCurrency:  unit.String(),
	}
	if id, ok := util.IdentityFromCtx(l.ctx); ok {
		order.UserId = sql.NullInt64{Int64: id.UserID, Valid: true}
	}

	if err := l.svcCtx.Orders.CreateWithItems(l.ctx, order, items); err != nil {
		if isDuplicateEntry(err) {
			return nil, errors.New(errno.InvalidParam, "payment session already used")
		}
		l.Errorw("checkout: create order failed", logx.Field("email", email), logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "Server error during checkout")
	}

	l.Infow("order created",
		logx.Field("orderId", order.Id),
		logx.Field("sessionId", order.PaymentSessionId),
		logx.Field("items", len(items)),
		logx.Field("amount", order.PaymentAmount.String()))
	return &types.CheckoutResponse{
		Success:   true,
		OrderId:   order.Id,
		SessionId: order.PaymentSessionId,
		Amount:    order.PaymentAmount.StringFixed(2),
		Currency:  order.PaymentCurrency,
	}, nil
}

func (l *CheckoutLogic) loadProducts(items []types.CheckoutItem) (map[int64]*productdal.Products, error) {
	ids := lo.Uniq(lo.Map(items, func(it types.CheckoutItem, _ int) int64 { return it.ProductId }))
	ids = lo.Filter(ids, func(id int64, _ int) bool { return id > 0 && l.mayExist(id) })
	if len(ids) == 0 {
		return map[int64]*productdal.Products{}, nil
	}
	found, err := l.svcCtx.Products.FindByIds(l.ctx, ids)
	if err != nil {
		return nil, err
	}
	return lo.KeyBy(found, func(p *productdal.Products) int64 { return p.Id }), nil
}

// mayExist consults the product bloom filter. Filter errors let the id through.
func (l *CheckoutLogic) mayExist(id int64) bool {
	if l.svcCtx.ProductFilter == nil {
		return true
	}
	ok, err := l.svcCtx.ProductFilter.Exists([]byte(strconv.FormatInt(id, 10)))
	if err != nil {
		l.Errorw("product bloom lookup failed", logx.Field("productId", id), logx.Field("err", err.Error()))
		return true
	}
	return ok
}

func snapshotOf(p *productdal.Products) *orderdal.ItemSnapshot {
	snap := &orderdal.ItemSnapshot{Name: p.Name, Type: p.Type, Price: p.Price}
	if p.HasFile() {
		snap.FileInfo = &orderdal.FileInfo{
			FileId:   p.FileId.String,
			FileName: p.FileName.String,
			BucketId: p.BucketId.String,
		}
	}
	return snap
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return stderrors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

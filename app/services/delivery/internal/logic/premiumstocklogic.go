package logic

import (
	"context"

	"DigiMart/app/common/consts/errno"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/x/errors"
)

type PremiumStockLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPremiumStockLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PremiumStockLogic {
	return &PremiumStockLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PremiumStockLogic) PremiumStock(req *types.PremiumStockRequest) (*types.PremiumStockResponse, error) {
	n, err := l.svcCtx.Codes.CountAvailable(l.ctx, req.ProductId)
	if err != nil {
		l.Errorw("count premium stock failed", logx.Field("productId", req.ProductId), logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "failed to count stock")
	}
	return &types.PremiumStockResponse{ProductId: req.ProductId, Available: n}, nil
}

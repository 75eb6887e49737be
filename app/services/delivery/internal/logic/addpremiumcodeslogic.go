package logic

import (
	"context"
	"strings"

	"DigiMart/app/common/consts/errno"
	productdal "DigiMart/app/dal/product"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/samber/lo"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/x/errors"
)

type AddPremiumCodesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAddPremiumCodesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AddPremiumCodesLogic {
	return &AddPremiumCodesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// AddPremiumCodes encrypts and stocks codes for a premium product. Blank and
// repeated codes in the request are ignored.
func (l *AddPremiumCodesLogic) AddPremiumCodes(req *types.AddPremiumCodesRequest) (*types.AddPremiumCodesResponse, error) {
	if err := l.checkPremiumProduct(req.ProductId); err != nil {
		return nil, err
	}

	codes := lo.Uniq(lo.FilterMap(req.Codes, func(c string, _ int) (string, bool) {
		c = strings.TrimSpace(c)
		return c, c != ""
	}))
	if len(codes) == 0 {
		return nil, errors.New(errno.InvalidParam, "codes required")
	}

	encrypted := make([]string, 0, len(codes))
	for _, c := range codes {
		enc, err := l.svcCtx.Cipher.Encrypt(c)
		if err != nil {
			l.Errorw("encrypt premium code failed", logx.Field("productId", req.ProductId), logx.Field("err", err.Error()))
			return nil, errors.New(errno.InternalError, "failed to encrypt codes")
		}
		encrypted = append(encrypted, enc)
	}

	n, err := l.svcCtx.Codes.InsertBatch(l.ctx, req.ProductId, encrypted)
	if err != nil {
		l.Errorw("insert premium codes failed", logx.Field("productId", req.ProductId), logx.Field("err", err.Error()))
		return nil, errors.New(errno.InternalError, "failed to store codes")
	}
	l.Infow("premium codes stocked", logx.Field("productId", req.ProductId), logx.Field("count", n))
	return &types.AddPremiumCodesResponse{
		ProductId: req.ProductId,
		Inserted:  n,
		Ignored:   len(req.Codes) - len(codes),
	}, nil
}

func (l *AddPremiumCodesLogic) checkPremiumProduct(productID int64) error {
	p, err := l.svcCtx.Products.FindOne(l.ctx, productID)
	if err == productdal.ErrNotFound {
		return errors.New(errno.ProductNotFound, "product not found")
	}
	if err != nil {
		l.Errorw("load product failed", logx.Field("productId", productID), logx.Field("err", err.Error()))
		return errors.New(errno.InternalError, "failed to load product")
	}
	if p.Type != productdal.TypePremiumAccount {
		return errors.New(errno.InvalidParam, "product is not a premium account")
	}
	return nil
}

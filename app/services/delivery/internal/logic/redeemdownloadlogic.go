package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DigiMart/app/common/downloadtoken"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
)

const storageTimeout = 10 * time.Second

var ErrTooManyDownloads = errors.New("download quota exceeded")

type RedeemDownloadLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRedeemDownloadLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RedeemDownloadLogic {
	return &RedeemDownloadLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RedeemDownload turns a mailed download token into a short-lived storage URL.
func (l *RedeemDownloadLogic) RedeemDownload(req *types.RedeemDownloadRequest) (string, error) {
	claims, err := l.svcCtx.Downloads.Parse(req.Token)
	if err != nil {
		return "", err
	}

	if err := l.takeQuota(claims); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(l.ctx, storageTimeout)
	defer cancel()
	url, err := l.svcCtx.Storage.SignedDownloadURL(ctx, claims.FileName, claims.BucketID, l.svcCtx.StorageURLTTL(), claims.DisplayName)
	if err != nil {
		return "", fmt.Errorf("sign storage url for order %s: %w", claims.OrderID, err)
	}
	l.Infow("download redeemed", logx.Field("orderId", claims.OrderID), logx.Field("file", claims.FileName))
	return url, nil
}

// takeQuota counts redemptions per order file. A limiter error lets the download through.
func (l *RedeemDownloadLogic) takeQuota(claims *downloadtoken.Claims) error {
	if l.svcCtx.DownloadLimiter == nil {
		return nil
	}
	code, err := l.svcCtx.DownloadLimiter.TakeCtx(l.ctx, claims.OrderID+":"+claims.FileName)
	if err != nil {
		l.Errorw("download limiter unavailable", logx.Field("orderId", claims.OrderID), logx.Field("err", err.Error()))
		return nil
	}
	if code == limit.OverQuota {
		l.Infow("download quota exceeded", logx.Field("orderId", claims.OrderID), logx.Field("file", claims.FileName))
		return ErrTooManyDownloads
	}
	return nil
}

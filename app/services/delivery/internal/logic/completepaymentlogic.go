package logic

import (
	"context"
	"errors"
	"strings"

	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

var ErrSessionRequired = errors.New("sessionId required")

type CompletePaymentLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCompletePaymentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CompletePaymentLogic {
	return &CompletePaymentLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// CompletePayment is the manual trigger used by the storefront's payment success page.
func (l *CompletePaymentLogic) CompletePayment(req *types.CompletePaymentRequest) (*types.CompletePaymentResponse, error) {
	sessionID := strings.TrimSpace(req.SessionId)
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	res, err := NewDeliverOrderLogic(l.ctx, l.svcCtx).DeliverOrderByPaymentSession(DeliveryRequest{
		Provider:  l.svcCtx.Config.Delivery.Provider,
		SessionID: sessionID,
		Payload:   map[string]any{"source": "manual"},
	})
	if err != nil {
		l.Errorw("manual completion failed", logx.Field("sessionId", sessionID), logx.Field("err", err.Error()))
		return nil, err
	}
	return &types.CompletePaymentResponse{Success: true, OrderId: res.Order.Id}, nil
}

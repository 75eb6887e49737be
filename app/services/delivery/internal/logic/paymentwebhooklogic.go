package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"DigiMart/app/services/delivery/internal/mq"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/types"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/jsonx"
	"github.com/zeromicro/go-zero/core/logx"
)

const webhookRetryDelay = 30 * time.Second

var (
	ErrMissingSession = errors.New("missing session id")
	ErrBadPayload     = errors.New("webhook payload is not a json object")
)

type PaymentWebhookLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPaymentWebhookLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PaymentWebhookLogic {
	return &PaymentWebhookLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// PaymentWebhook handles a provider confirmation. A retryable delivery failure is also
// queued on asynq so the order gets delivered even if the provider stops retrying.
func (l *PaymentWebhookLogic) PaymentWebhook(body []byte) (*types.PaymentWebhookResponse, error) {
	payload, err := DecodePayload(body)
	if err != nil {
		return nil, err
	}
	sessionID := SessionIDFrom(payload)
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	req := DeliveryRequest{
		Provider:  l.svcCtx.Config.Delivery.Provider,
		SessionID: sessionID,
		Payload:   payload,
	}
	if _, err := NewDeliverOrderLogic(l.ctx, l.svcCtx).DeliverOrderByPaymentSession(req); err != nil {
		l.Errorw("webhook delivery failed",
			logx.Field("sessionId", sessionID),
			logx.Field("retryable", IsRetryable(err)),
			logx.Field("err", err.Error()))
		if IsRetryable(err) {
			l.scheduleRetry(req)
		}
		return nil, err
	}
	return &types.PaymentWebhookResponse{Received: true}, nil
}

func (l *PaymentWebhookLogic) scheduleRetry(req DeliveryRequest) {
	if l.svcCtx.Tasks == nil {
		return
	}
	err := mq.EnqueueDeliverOrder(context.WithoutCancel(l.ctx), l.svcCtx.Tasks, mq.DeliverOrderPayload{
		Provider:  req.Provider,
		SessionId: req.SessionID,
		Payload:   req.Payload,
	}, webhookRetryDelay)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		l.Errorw("schedule delivery retry failed", logx.Field("sessionId", req.SessionID), logx.Field("err", err.Error()))
	}
}

// DecodePayload keeps numbers as json.Number so amounts are compared exactly.
func DecodePayload(body []byte) (map[string]any, error) {
	var payload map[string]any
	if err := jsonx.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if payload == nil {
		return nil, ErrBadPayload
	}
	return payload, nil
}

// SessionIDFrom looks for data.sessionId, then session_id, then id.
func SessionIDFrom(payload map[string]any) string {
	if data, ok := payload["data"].(map[string]any); ok {
		if s := stringField(data["sessionId"]); s != "" {
			return s
		}
	}
	if s := stringField(payload["session_id"]); s != "" {
		return s
	}
	return stringField(payload["id"])
}

func stringField(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	}
	return ""
}

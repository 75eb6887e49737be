package worker

import (
	"context"
	"fmt"

	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/mq"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/logx"
)

// NewAsynqMux registers the delivery retry task.
func NewAsynqMux(sc *svc.ServiceContext) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(mq.TaskDeliverOrder, func(ctx context.Context, t *asynq.Task) error {
		return HandleDeliverOrder(ctx, sc, t)
	})
	return mux
}

// HandleDeliverOrder runs the delivery for a queued session. Failures that can never
// succeed skip asynq's retries.
func HandleDeliverOrder(ctx context.Context, sc *svc.ServiceContext, t *asynq.Task) error {
	var p mq.DeliverOrderPayload
	if err := mq.Decode(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	_, err := logic.NewDeliverOrderLogic(ctx, sc).DeliverOrderByPaymentSession(logic.DeliveryRequest{
		Provider:  p.Provider,
		SessionID: p.SessionId,
		Payload:   p.Payload,
	})
	if err == nil {
		return nil
	}
	logx.WithContext(ctx).Errorw("queued delivery failed",
		logx.Field("sessionId", p.SessionId),
		logx.Field("retryable", logic.IsRetryable(err)),
		logx.Field("err", err.Error()))
	if !logic.IsRetryable(err) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

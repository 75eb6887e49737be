package worker

import (
	"context"
	"errors"
	"time"

	"DigiMart/app/services/delivery/internal/logic"
	"DigiMart/app/services/delivery/internal/mq"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/logx"
)

const consumerRetryDelay = 30 * time.Second

// MessageReader is the part of *kafka.Reader the consumer loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// StartPaymentConsumer blocks consuming payment.confirmed events until ctx ends.
// It returns nil right away when the consumer is not configured.
func StartPaymentConsumer(ctx context.Context, sc *svc.ServiceContext) error {
	kc := sc.Config.KafkaConf
	if len(kc.Broker) == 0 || kc.PaymentTopic == "" || kc.Group == "" {
		return nil
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kc.Broker,
		GroupID:     kc.Group,
		Topic:       kc.PaymentTopic,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafka.FirstOffset,
	})
	defer r.Close()
	return Consume(ctx, sc, r)
}

// Consume commits every message after handling it. Deliveries that fail but may
// succeed later are handed to the asynq retry queue instead of blocking the partition.
func Consume(ctx context.Context, sc *svc.ServiceContext, r MessageReader) error {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logx.Errorw("fetch payment event failed", logx.Field("err", err.Error()))
			continue
		}
		HandlePaymentConfirmed(ctx, sc, m)
		if err := r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			logx.Errorw("commit payment event failed", logx.Field("offset", m.Offset), logx.Field("err", err.Error()))
		}
	}
}

func HandlePaymentConfirmed(ctx context.Context, sc *svc.ServiceContext, m kafka.Message) {
	logger := logx.WithContext(ctx)
	var evt mq.PaymentConfirmedEvent
	if err := mq.Decode(m.Value, &evt); err != nil || evt.SessionId == "" {
		logger.Errorw("drop malformed payment event", logx.Field("offset", m.Offset), logx.Field("key", string(m.Key)))
		return
	}

	payload := evt.Payload
	if evt.Amount != nil {
		if payload == nil {
			payload = map[string]any{}
		}
		payload["amount"] = evt.Amount
	}
	req := logic.DeliveryRequest{Provider: evt.Provider, SessionID: evt.SessionId, Payload: payload}

	_, err := logic.NewDeliverOrderLogic(ctx, sc).DeliverOrderByPaymentSession(req)
	if err == nil {
		return
	}
	logger.Errorw("event delivery failed",
		logx.Field("sessionId", evt.SessionId),
		logx.Field("retryable", logic.IsRetryable(err)),
		logx.Field("err", err.Error()))
	if !logic.IsRetryable(err) || sc.Tasks == nil {
		return
	}
	err = mq.EnqueueDeliverOrder(ctx, sc.Tasks, mq.DeliverOrderPayload{
		Provider:  req.Provider,
		SessionId: req.SessionID,
		Payload:   req.Payload,
	}, consumerRetryDelay)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Errorw("schedule delivery retry failed", logx.Field("sessionId", evt.SessionId), logx.Field("err", err.Error()))
	}
}

package mq

import (
	"time"

	"github.com/zeromicro/go-zero/core/jsonx"
)

// Asynq task types
const (
	TaskDeliverOrder = "delivery:deliver_order"
)

const QueueCritical = "critical"

// DeliverOrderPayload asks a worker to run the delivery for one payment session.
type DeliverOrderPayload struct {
	Provider  string         `json:"provider"`
	SessionId string         `json:"session_id"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// PaymentConfirmedEvent is consumed from Kafka; the payment side publishes it once a
// session is paid.
type PaymentConfirmedEvent struct {
	Provider  string         `json:"provider"`
	SessionId string         `json:"session_id"`
	Amount    any            `json:"amount,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// OrderDeliveredEvent is published after an order commits as delivered.
type OrderDeliveredEvent struct {
	OrderId     int64     `json:"order_id"`
	Email       string    `json:"email"`
	UserId      int64     `json:"user_id,omitempty"`
	MessageId   string    `json:"message_id"`
	CodeIds     []int64   `json:"code_ids"`
	Skipped     int       `json:"skipped"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Decode unmarshals a task or event body keeping untyped numbers as json.Number,
// so amounts survive the round trip exactly.
func Decode(body []byte, v any) error {
	return jsonx.Unmarshal(body, v)
}

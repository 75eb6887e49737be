package mq

import (
	"context"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/jsonx"
)

// EventWriter is the part of *kafka.Writer the service uses.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// TaskEnqueuer is the part of *asynq.Client the service uses.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewEventWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           5 * time.Millisecond,
	}
}

// PublishOrderDelivered keys the message by order id so one order's events stay ordered.
func PublishOrderDelivered(ctx context.Context, w EventWriter, evt OrderDeliveredEvent) error {
	body, err := jsonx.Marshal(evt)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.OrderId, 10)),
		Value: body,
	})
}

// RetryWindow bounds how long one retry task id stays in use. Archived tasks keep
// their id, so a session gets a fresh id in the next window.
const RetryWindow = 10 * time.Minute

var clock = time.Now

// DeliverOrderTaskID collapses retries for a session that fall in the same window.
func DeliverOrderTaskID(p DeliverOrderPayload, at time.Time) string {
	window := at.Unix() / int64(RetryWindow/time.Second)
	return p.Provider + ":" + p.SessionId + ":" + strconv.FormatInt(window, 10)
}

// EnqueueDeliverOrder schedules a delivery retry. A burst of failed webhooks for one
// session collapses into one pending task.
func EnqueueDeliverOrder(ctx context.Context, q TaskEnqueuer, p DeliverOrderPayload, delay time.Duration) error {
	body, err := jsonx.Marshal(p)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskDeliverOrder, body)
	_, err = q.EnqueueContext(ctx, task,
		asynq.TaskID(DeliverOrderTaskID(p, clock())),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(8),
		asynq.Queue(QueueCritical))
	return err
}

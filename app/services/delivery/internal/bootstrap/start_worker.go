package bootstrap

import (
	"context"
	"time"

	"DigiMart/app/services/delivery/internal/mq"
	"DigiMart/app/services/delivery/internal/svc"
	"DigiMart/app/services/delivery/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/zeromicro/go-zero/core/logx"
)

// StartWorkers runs the asynq retry server and the payment event consumer.
// The returned func stops both.
func StartWorkers(sc *svc.ServiceContext) func() {
	var stops []func()

	if addr := svc.AsynqAddr(sc.Config); addr != "" {
		srv := asynq.NewServer(asynq.RedisClientOpt{Addr: addr}, asynq.Config{
			Concurrency: sc.Config.AsynqServerConf.Concurrency,
			Queues:      queues(sc.Config.AsynqServerConf.Queues),
		})
		mux := worker.NewAsynqMux(sc)
		go func() {
			if err := srv.Run(mux); err != nil {
				logx.Errorw("asynq server stopped", logx.Field("err", err.Error()))
			}
		}()
		stops = append(stops, srv.Shutdown)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := worker.StartPaymentConsumer(ctx, sc); err != nil {
			logx.Errorw("payment consumer stopped", logx.Field("err", err.Error()))
		}
	}()
	stops = append(stops, cancel)

	return func() {
		for _, stop := range stops {
			stop()
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func queues(q map[string]int) map[string]int {
	if len(q) > 0 {
		return q
	}
	return map[string]int{mq.QueueCritical: 6, "default": 3}
}

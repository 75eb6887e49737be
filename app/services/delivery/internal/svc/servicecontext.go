package svc

import (
	"context"
	"strconv"
	"time"

	"DigiMart/app/common/codecrypt"
	"DigiMart/app/common/consts/biz"
	"DigiMart/app/common/downloadtoken"
	"DigiMart/app/common/middleware"
	"DigiMart/app/common/snowflake"
	cartdal "DigiMart/app/dal/cart"
	orderdal "DigiMart/app/dal/order"
	"DigiMart/app/dal/premiumcode"
	productdal "DigiMart/app/dal/product"
	"DigiMart/app/services/delivery/internal/allocator"
	"DigiMart/app/services/delivery/internal/config"
	"DigiMart/app/services/delivery/internal/issuer"
	"DigiMart/app/services/delivery/internal/mq"
	"DigiMart/app/services/delivery/internal/notify"
	"DigiMart/app/services/delivery/internal/storage"

	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/zeromicro/go-zero/core/bloom"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/rest"
)

const defaultMailTimeout = 30 * time.Second

// DownloadLimiter is the part of *limit.PeriodLimit the redeem route uses.
type DownloadLimiter interface {
	TakeCtx(ctx context.Context, key string) (int, error)
}

// ProductFilter answers "might this product exist" without a database hit.
type ProductFilter interface {
	Add(data []byte) error
	Exists(data []byte) (bool, error)
}

type ServiceContext struct {
	Config config.Config

	Orders     orderdal.OrdersModel
	OrderItems orderdal.OrderItemsModel
	Products   productdal.ProductsModel
	Codes      premiumcode.PremiumCodesModel
	Carts      cartdal.CartModel

	// nil when no bloom key is configured or preheating failed
	ProductFilter ProductFilter

	Allocator *allocator.Allocator
	Issuer    *issuer.Issuer
	Downloads *downloadtoken.Signer
	Cipher    *codecrypt.Cipher
	Mailer    notify.Mailer
	Storage   storage.SignedURLer

	// nil when DownloadQuota is zero
	DownloadLimiter DownloadLimiter

	// Events and Tasks are nil when Kafka or asynq are not configured.
	Events mq.EventWriter
	Tasks  mq.TaskEnqueuer

	AuthMiddleware         rest.Middleware
	OptionalAuthMiddleware rest.Middleware
	AdminMiddleware        rest.Middleware

	Now func() time.Time

	kafkaWriter *kafka.Writer
	asynqClient *asynq.Client
}

// NewServiceContext panics on configuration that would make deliveries fail later:
// a crypto key that is not 32 bytes, or an empty download secret.
func NewServiceContext(c config.Config) *ServiceContext {
	logx.MustSetup(c.Log)

	cipher, err := codecrypt.New([]byte(c.Delivery.CryptoSecretKey))
	if err != nil {
		logx.Errorw("invalid crypto secret key", logx.Field("err", err.Error()))
		panic(err)
	}
	ttl := c.Delivery.DownloadTTL
	if ttl <= 0 {
		ttl = biz.DownloadTokenExpire
	}
	downloads, err := downloadtoken.NewSigner(c.Delivery.DownloadSecret, ttl)
	if err != nil {
		logx.Errorw("invalid download token config", logx.Field("err", err.Error()))
		panic(err)
	}

	if c.SnowflakeNode > 0 {
		if err := snowflake.SetNodeID(c.SnowflakeNode); err != nil {
			logx.Errorf("failed to set snowflake node id: %v", err)
		}
	}

	db := sqlx.NewMysql(c.MysqlConf.DataSource)
	products := productdal.NewProductsModel(db, c.CacheConf)
	codes := premiumcode.NewPremiumCodesModel(db)

	presigner, err := storage.NewS3Presigner(context.Background(), storage.Conf{
		Endpoint: c.Storage.Endpoint,
		Region:   c.Storage.Region,
		KeyID:    c.Storage.KeyID,
		AppKey:   c.Storage.AppKey,
		Bucket:   c.Storage.Bucket,
	})
	if err != nil {
		panic(err)
	}

	sc := &ServiceContext{
		Config:                 c,
		Orders:                 orderdal.NewOrdersModel(db),
		OrderItems:             orderdal.NewOrderItemsModel(db),
		Products:               products,
		Codes:                  codes,
		Carts:                  cartdal.NewCartModel(db),
		Allocator:              allocator.New(codes),
		Issuer:                 issuer.New(downloads, cipher, c.Delivery.AppURL),
		Downloads:              downloads,
		Cipher:                 cipher,
		Mailer:                 newMailer(c),
		Storage:                presigner,
		AuthMiddleware:         middleware.NewAuthMiddleware(c.Auth.AccessSecret).Handle,
		OptionalAuthMiddleware: middleware.NewOptionalAuthMiddleware(c.Auth.AccessSecret).Handle,
		AdminMiddleware:        middleware.NewRoleMiddleware(biz.ROLE_ADMIN).Handle,
		Now:                    time.Now,
	}

	if len(c.KafkaConf.Broker) > 0 && c.KafkaConf.DeliveredTopic != "" {
		sc.kafkaWriter = mq.NewEventWriter(c.KafkaConf.Broker, c.KafkaConf.DeliveredTopic)
		sc.Events = sc.kafkaWriter
	}
	if addr := AsynqAddr(c); addr != "" {
		sc.asynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: addr})
		sc.Tasks = sc.asynqClient
	}
	if c.Delivery.DownloadQuota > 0 {
		period := max(int(c.Delivery.DownloadPeriod.Seconds()), 1)
		sc.DownloadLimiter = limit.NewPeriodLimit(period, c.Delivery.DownloadQuota,
			redis.MustNewRedis(c.RedisConf), biz.DownloadLimitKeyPrefix)
	}
	if c.ProductBloomKey != "" {
		sc.ProductFilter = newProductFilter(c, products)
	}

	return sc
}

func newMailer(c config.Config) notify.Mailer {
	if c.Mail.Host == "" {
		logx.Info("mail host not configured, delivery mails go to the log")
		return notify.LogMailer{}
	}
	m, err := notify.NewSMTPMailer(notify.SMTPConf{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Username,
		Password: c.Mail.Password,
		Timeout:  c.Delivery.MailTimeout,
	})
	if err != nil {
		panic(err)
	}
	return m
}

func newProductFilter(c config.Config, products productdal.ProductsModel) ProductFilter {
	bf := bloom.New(redis.MustNewRedis(c.RedisConf), c.ProductBloomKey, c.ProductBloomBits)
	ids, err := products.FindAllProductId(context.Background())
	if err != nil {
		logx.Errorw("product bloom preheat failed, filter disabled", logx.Field("err", err.Error()))
		return nil
	}
	for _, id := range ids {
		if err := bf.Add([]byte(strconv.FormatInt(id, 10))); err != nil {
			logx.Errorw("product bloom preheat failed, filter disabled", logx.Field("err", err.Error()))
			return nil
		}
	}
	return bf
}

// AsynqAddr falls back to the redis host when no dedicated asynq address is set.
func AsynqAddr(c config.Config) string {
	if c.AsynqConf.Addr != "" {
		return c.AsynqConf.Addr
	}
	return c.RedisConf.Host
}

func (sc *ServiceContext) MailTimeout() time.Duration {
	if sc.Config.Delivery.MailTimeout > 0 {
		return sc.Config.Delivery.MailTimeout
	}
	return defaultMailTimeout
}

func (sc *ServiceContext) StorageURLTTL() time.Duration {
	if sc.Config.Delivery.StorageURLTTL > 0 {
		return sc.Config.Delivery.StorageURLTTL
	}
	return biz.StorageURLExpire
}

func (sc *ServiceContext) Close() {
	if sc.kafkaWriter != nil {
		if err := sc.kafkaWriter.Close(); err != nil {
			logx.Errorw("close kafka writer", logx.Field("err", err.Error()))
		}
	}
	if sc.asynqClient != nil {
		_ = sc.asynqClient.Close()
	}
}

package config

import (
	"time"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/rest"
)

type Config struct {
	rest.RestConf

	MysqlConf sqlx.SqlConf
	RedisConf redis.RedisConf
	CacheConf cache.CacheConf

	// Use lightweight config structs to avoid mapstructure errors on func fields
	AsynqConf       AsynqRedisConf  `json:",optional"`
	AsynqServerConf AsynqServerConf `json:",optional"`

	KafkaConf KafkaConf `json:",optional"`

	Auth     AuthConf
	Delivery DeliveryConf
	Storage  StorageConf
	Mail     MailConf `json:",optional"`

	// Product ids are checked against this bloom filter at checkout when set.
	ProductBloomKey  string `json:",optional"`
	ProductBloomBits uint   `json:",default=1048576"`

	SnowflakeNode int64 `json:",optional"`
}

type AsynqRedisConf struct {
	Addr string `json:",optional"`
}

type AsynqServerConf struct {
	Concurrency int            `json:",default=10"`
	Queues      map[string]int `json:",optional"`
}

type KafkaConf struct {
	Broker []string `json:",optional"`
	Group  string   `json:",optional"`
	// payment.confirmed events feed the orchestrator
	PaymentTopic string `json:",optional"`
	// order.delivered events are published after commit
	DeliveredTopic string `json:",optional"`
}

type AuthConf struct {
	AccessSecret string
	AccessExpire int64 `json:",default=86400"`
}

type DeliveryConf struct {
	Provider        string `json:",default=demo"`
	AppURL          string `json:",default=http://localhost:5000"`
	DownloadSecret  string
	DownloadTTL     time.Duration `json:",default=24h"`
	StorageURLTTL   time.Duration `json:",default=1h"`
	CryptoSecretKey string
	Sender          string
	SupportEmail    string        `json:",optional"`
	DeliveryLease   time.Duration `json:",default=5m"`
	MailTimeout     time.Duration `json:",default=30s"`
	Currency        string        `json:",default=LKR"`
	// Redemptions per order file within DownloadPeriod. Zero turns the limit off.
	DownloadQuota  int           `json:",optional"`
	DownloadPeriod time.Duration `json:",default=1h"`
}

// StorageConf points at an S3 compatible endpoint (Backblaze B2 in production).
type StorageConf struct {
	Endpoint string `json:",optional"`
	Region   string `json:",default=us-west-004"`
	KeyID    string `json:",optional"`
	AppKey   string `json:",optional"`
	Bucket   string `json:",optional"`
}

// MailConf configures SMTP. An empty Host routes mail to the log instead.
type MailConf struct {
	Host     string `json:",optional"`
	Port     int    `json:",default=587"`
	Username string `json:",optional"`
	Password string `json:",optional"`
}

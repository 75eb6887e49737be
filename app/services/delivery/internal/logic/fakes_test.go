package logic

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"DigiMart/app/common/codecrypt"
	"DigiMart/app/common/downloadtoken"
	cartdal "DigiMart/app/dal/cart"
	orderdal "DigiMart/app/dal/order"
	"DigiMart/app/dal/premiumcode"
	productdal "DigiMart/app/dal/product"
	"DigiMart/app/services/delivery/internal/allocator"
	"DigiMart/app/services/delivery/internal/config"
	"DigiMart/app/services/delivery/internal/issuer"
	"DigiMart/app/services/delivery/internal/notify"
	"DigiMart/app/services/delivery/internal/svc"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/hibiken/asynq"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	testCryptoKey = "0123456789abcdef0123456789abcdef"
	testAppURL    = "http://shop.test"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

// memDB backs every fake model so the tests can look at state after a run.
type memDB struct {
	mu       sync.Mutex
	orders   map[int64]*orderdal.Orders
	items    map[int64][]*orderdal.OrderItems
	products map[int64]*productdal.Products
	codes    []*premiumcode.PremiumCodes
	nextCode int64

	releases      int
	loseOnCommit  bool
	createErr     error
	clearCartErr  error
	clearedCarts  []int64
	insertedCodes int
}

func newMemDB() *memDB {
	return &memDB{
		orders:   map[int64]*orderdal.Orders{},
		items:    map[int64][]*orderdal.OrderItems{},
		products: map[int64]*productdal.Products{},
	}
}

func (db *memDB) addProduct(p *productdal.Products) *productdal.Products {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.products[p.Id] = p
	return p
}

func (db *memDB) addOrder(o *orderdal.Orders, items ...*orderdal.OrderItems) *orderdal.Orders {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, it := range items {
		it.Id = o.Id*100 + int64(i)
		it.OrderId = o.Id
		it.Position = int64(i)
	}
	db.orders[o.Id] = o
	db.items[o.Id] = items
	return o
}

// addCodes stocks plain codes, encrypting them the way the admin route does.
func (db *memDB) addCodes(c *codecrypt.Cipher, productID int64, plain ...string) []int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	ids := make([]int64, 0, len(plain))
	for _, p := range plain {
		enc, err := c.Encrypt(p)
		if err != nil {
			panic(err)
		}
		ids = append(ids, db.appendCode(productID, enc))
	}
	return ids
}

func (db *memDB) appendCode(productID int64, encrypted string) int64 {
	db.nextCode++
	db.codes = append(db.codes, &premiumcode.PremiumCodes{Id: db.nextCode, ProductId: productID, EncryptedCode: encrypted})
	return db.nextCode
}

func (db *memDB) order(id int64) orderdal.Orders {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.orders[id]
}

func (db *memDB) assignedTo(orderID int64) []int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	var ids []int64
	for _, c := range db.codes {
		if c.IsAssigned == 1 && c.AssignedOrderId.Int64 == orderID {
			ids = append(ids, c.Id)
		}
	}
	return ids
}

func (db *memDB) unassigned(productID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, c := range db.codes {
		if c.ProductId == productID && c.IsAssigned == 0 {
			n++
		}
	}
	return n
}

type fakeOrders struct {
	orderdal.OrdersModel
	db *memDB
}

func (f *fakeOrders) FindOne(_ context.Context, id int64) (*orderdal.Orders, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	o, ok := f.db.orders[id]
	if !ok {
		return nil, orderdal.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) FindOneByPaymentProviderPaymentSessionId(_ context.Context, provider, session string) (*orderdal.Orders, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, o := range f.db.orders {
		if o.PaymentProvider == provider && o.PaymentSessionId == session {
			cp := *o
			return &cp, nil
		}
	}
	return nil, orderdal.ErrNotFound
}

func (f *fakeOrders) CreateWithItems(_ context.Context, o *orderdal.Orders, items []*orderdal.OrderItems) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.createErr != nil {
		return f.db.createErr
	}
	if len(items) == 0 {
		return orderdal.ErrEmptyItems
	}
	for i, it := range items {
		it.OrderId, it.Position = o.Id, int64(i)
	}
	cp := *o
	f.db.orders[o.Id] = &cp
	f.db.items[o.Id] = items
	return nil
}

func (f *fakeOrders) ClaimForDelivery(_ context.Context, id int64, now, staleBefore time.Time) (time.Time, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	o, ok := f.db.orders[id]
	if !ok {
		return time.Time{}, false, nil
	}
	switch {
	case o.Status == orderdal.StatusPending, o.Status == orderdal.StatusPaid,
		o.Status == orderdal.StatusDelivering && o.DeliveringAt.Valid && o.DeliveringAt.Time.Before(staleBefore):
		token := orderdal.ClaimToken(now)
		o.Status = orderdal.StatusDelivering
		o.DeliveringAt = sql.NullTime{Time: token, Valid: true}
		return token, true, nil
	}
	return time.Time{}, false, nil
}

// holds reports whether the order is still delivering under the claim taken at claimedAt.
func holds(o *orderdal.Orders, claimedAt time.Time) bool {
	return o != nil && o.Status == orderdal.StatusDelivering &&
		o.DeliveringAt.Valid && o.DeliveringAt.Time.Equal(claimedAt)
}

func (f *fakeOrders) ReleaseClaim(_ context.Context, id int64, claimedAt time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.releases++
	o := f.db.orders[id]
	if !holds(o, claimedAt) {
		return orderdal.ErrClaimLost
	}
	o.Status = orderdal.StatusPending
	o.DeliveringAt = sql.NullTime{}
	return nil
}

func (f *fakeOrders) MarkDelivered(_ context.Context, id int64, claimedAt time.Time, info orderdal.DeliveredInfo) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	o := f.db.orders[id]
	if !holds(o, claimedAt) || f.db.loseOnCommit {
		return orderdal.ErrClaimLost
	}
	ids := info.CodeIds
	if ids == nil {
		ids = []int64{}
	}
	b, _ := json.Marshal(ids)
	o.Status = orderdal.StatusDelivered
	o.PaymentRaw = sql.NullString{String: info.PaymentRaw, Valid: info.PaymentRaw != ""}
	o.DeliveredAt = sql.NullTime{Time: info.DeliveredAt, Valid: true}
	o.DeliveredMessageId = sql.NullString{String: info.MessageId, Valid: true}
	o.DeliveredCodeIds = sql.NullString{String: string(b), Valid: true}
	o.DeliveringAt = sql.NullTime{}
	return nil
}

func (f *fakeOrders) ListDeliveredByEmail(_ context.Context, email string, limit int64) ([]*orderdal.Orders, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*orderdal.Orders
	for _, o := range f.db.orders {
		if o.Email == email && o.Status == orderdal.StatusDelivered {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveredAt.Time.After(out[j].DeliveredAt.Time) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeItems struct {
	orderdal.OrderItemsModel
	db *memDB
}

func (f *fakeItems) ListByOrder(_ context.Context, orderID int64) ([]*orderdal.OrderItems, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return append([]*orderdal.OrderItems(nil), f.db.items[orderID]...), nil
}

func (f *fakeItems) ListByOrderIds(_ context.Context, orderIDs []int64) ([]*orderdal.OrderItems, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*orderdal.OrderItems
	for _, id := range orderIDs {
		out = append(out, f.db.items[id]...)
	}
	return out, nil
}

type fakeProducts struct {
	productdal.ProductsModel
	db *memDB
}

func (f *fakeProducts) FindOne(_ context.Context, id int64) (*productdal.Products, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return nil, productdal.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) FindByIds(_ context.Context, ids []int64) ([]*productdal.Products, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*productdal.Products
	for _, id := range ids {
		if p, ok := f.db.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCodes struct {
	premiumcode.PremiumCodesModel
	db *memDB
}

func (f *fakeCodes) ClaimOne(_ context.Context, productID, orderID int64, email string, at time.Time) (*premiumcode.PremiumCodes, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.codes {
		if c.ProductId == productID && c.IsAssigned == 0 {
			c.IsAssigned = 1
			c.AssignedOrderId = sql.NullInt64{Int64: orderID, Valid: true}
			c.AssignedEmail = sql.NullString{String: email, Valid: true}
			c.AssignedAt = sql.NullTime{Time: at, Valid: true}
			cp := *c
			return &cp, nil
		}
	}
	return nil, premiumcode.ErrNoneAvailable
}

func (f *fakeCodes) ListAssignedToOrder(_ context.Context, productID, orderID int64) ([]*premiumcode.PremiumCodes, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*premiumcode.PremiumCodes
	for _, c := range f.db.codes {
		if c.ProductId == productID && c.IsAssigned == 1 && c.AssignedOrderId.Int64 == orderID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCodes) InsertBatch(_ context.Context, productID int64, encrypted []string) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if len(encrypted) == 0 {
		return 0, premiumcode.ErrEmptyBatch
	}
	for _, e := range encrypted {
		f.db.appendCode(productID, e)
	}
	f.db.insertedCodes += len(encrypted)
	return int64(len(encrypted)), nil
}

func (f *fakeCodes) CountAvailable(_ context.Context, productID int64) (int64, error) {
	return int64(f.db.unassigned(productID)), nil
}

type fakeCarts struct {
	cartdal.CartModel
	db *memDB
}

func (f *fakeCarts) ClearByUser(_ context.Context, userID int64) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.clearCartErr != nil {
		return 0, f.db.clearCartErr
	}
	f.db.clearedCarts = append(f.db.clearedCarts, userID)
	return 1, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Mail
	err  error
	// runs once, at the start of the next send
	onSend func()
}

func (m *fakeMailer) SendMail(_ context.Context, mail notify.Mail) (string, error) {
	m.mu.Lock()
	hook := m.onSend
	m.onSend = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, mail)
	return fmt.Sprintf("<msg-%d@shop.test>", len(m.sent)), nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type captureWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
	return nil
}

type captureQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (c *captureQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{ID: "t"}, nil
}

type fakeStorage struct {
	err error
}

func (s *fakeStorage) SignedDownloadURL(_ context.Context, fileName, bucket string, ttl time.Duration, displayName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("https://storage.test/%s/%s?ttl=%d&name=%s", bucket, fileName, int(ttl.Seconds()), url.QueryEscape(displayName)), nil
}

type fakeFilter map[string]bool

func (f fakeFilter) Add(data []byte) error { f[string(data)] = true; return nil }

func (f fakeFilter) Exists(data []byte) (bool, error) {
	if f == nil {
		return false, errors.New("filter down")
	}
	return f[string(data)], nil
}

type testEnv struct {
	db      *memDB
	svc     *svc.ServiceContext
	mailer  *fakeMailer
	events  *captureWriter
	tasks   *captureQueue
	cipher  *codecrypt.Cipher
	signer  *downloadtoken.Signer
	storage *fakeStorage
}

func newTestEnv() *testEnv {
	db := newMemDB()
	cipher := codecrypt.MustNew(testCryptoKey)
	signer, err := downloadtoken.NewSigner("download-secret", 24*time.Hour)
	if err != nil {
		panic(err)
	}
	signer = signer.WithClock(func() time.Time { return testNow })
	codes := &fakeCodes{db: db}
	env := &testEnv{
		db:      db,
		mailer:  &fakeMailer{},
		events:  &captureWriter{},
		tasks:   &captureQueue{},
		cipher:  cipher,
		signer:  signer,
		storage: &fakeStorage{},
	}
	env.svc = &svc.ServiceContext{
		Config: config.Config{
			Delivery: config.DeliveryConf{
				Provider:      "demo",
				AppURL:        testAppURL,
				DownloadTTL:   24 * time.Hour,
				StorageURLTTL: time.Hour,
				Sender:        "DigiMart <no-reply@shop.test>",
				SupportEmail:  "support@shop.test",
				DeliveryLease: 5 * time.Minute,
				MailTimeout:   time.Second,
				Currency:      "LKR",
			},
		},
		Orders:     &fakeOrders{db: db},
		OrderItems: &fakeItems{db: db},
		Products:   &fakeProducts{db: db},
		Codes:      codes,
		Carts:      &fakeCarts{db: db},
		Allocator:  allocator.New(codes),
		Issuer:     issuer.New(signer, cipher, testAppURL),
		Downloads:  signer,
		Cipher:     cipher,
		Mailer:     env.mailer,
		Storage:    env.storage,
		Events:     env.events,
		Tasks:      env.tasks,
		Now:        func() time.Time { return testNow },
	}
	return env
}

func ebook(id int64, file string) *productdal.Products {
	p := &productdal.Products{Id: id, Name: gofakeit.BookTitle(), Type: productdal.TypeEbook, Price: decimal.RequireFromString("4.50"), IsAvailable: 1}
	if file != "" {
		p.FileName = sql.NullString{String: file, Valid: true}
		p.BucketId = sql.NullString{String: "ebooks", Valid: true}
	}
	return p
}

func premium(id int64) *productdal.Products {
	return &productdal.Products{Id: id, Name: gofakeit.AppName(), Type: productdal.TypePremiumAccount, Price: decimal.RequireFromString("5.50"), IsAvailable: 1}
}

func pendingOrder(id int64, session string, amount string) *orderdal.Orders {
	return &orderdal.Orders{
		Id:               id,
		UserId:           sql.NullInt64{Int64: 42, Valid: true},
		Email:            gofakeit.Email(),
		Status:           orderdal.StatusPending,
		PaymentProvider:  "demo",
		PaymentSessionId: session,
		PaymentAmount:    decimal.RequireFromString(amount),
		PaymentCurrency:  "LKR",
	}
}

// itemOf snapshots p the way checkout does.
func itemOf(p *productdal.Products, qty int64) *orderdal.OrderItems {
	it := &orderdal.OrderItems{ProductId: p.Id, Quantity: qty}
	if err := it.EncodeSnapshot(snapshotOf(p)); err != nil {
		panic(err)
	}
	return it
}

package order

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var orderColumns = []string{
	"id", "user_id", "email", "status", "payment_provider", "payment_session_id", "payment_amount",
	"payment_currency", "payment_raw", "delivering_at", "delivered_at", "delivered_message_id",
	"delivered_code_ids", "created_at", "updated_at",
}

func newOrdersMock(t *testing.T) (OrdersModel, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewOrdersModel(sqlx.NewSqlConnFromDB(db)), mock
}

func TestOrdersModel_FindOneByPayment(t *testing.T) {
	model, mock := newOrdersMock(t)
	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(orderColumns).
		AddRow(int64(7), nil, "buyer@example.com", StatusPending, "demo", "sess-1", "1500.00",
			"LKR", nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("where `payment_provider` = ? and `payment_session_id` = ? limit 1")).
		WithArgs("demo", "sess-1").
		WillReturnRows(rows)

	o, err := model.FindOneByPaymentProviderPaymentSessionId(ctx, "demo", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), o.Id)
	assert.False(t, o.UserId.Valid)
	assert.True(t, decimal.RequireFromString("1500").Equal(o.PaymentAmount))

	mock.ExpectQuery(regexp.QuoteMeta("where `payment_provider` = ? and `payment_session_id` = ? limit 1")).
		WithArgs("demo", "missing").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err = model.FindOneByPaymentProviderPaymentSessionId(ctx, "demo", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersModel_ClaimForDelivery(t *testing.T) {
	model, mock := newOrdersMock(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)
	stale := now.Add(-5 * time.Minute)
	token := time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC)

	claim := regexp.QuoteMeta("update `orders` set `status` = ?, `delivering_at` = ? where `id` = ? and (`status` in (?,?) or (`status` = ? and `delivering_at` < ?))")
	mock.ExpectExec(claim).
		WithArgs(StatusDelivering, token, int64(7), StatusPending, StatusPaid, StatusDelivering, stale).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(claim).
		WithArgs(StatusDelivering, sqlmock.AnyArg(), int64(7), StatusPending, StatusPaid, StatusDelivering, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimedAt, won, err := model.ClaimForDelivery(ctx, 7, now, stale)
	require.NoError(t, err)
	assert.True(t, won)
	assert.Equal(t, token, claimedAt)

	claimedAt, won, err = model.ClaimForDelivery(ctx, 7, now, stale)
	require.NoError(t, err)
	assert.False(t, won)
	assert.True(t, claimedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersModel_ReleaseClaim(t *testing.T) {
	model, mock := newOrdersMock(t)
	mine := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	release := regexp.QuoteMeta("update `orders` set `status` = ?, `delivering_at` = null where `id` = ? and `status` = ? and `delivering_at` = ?")
	mock.ExpectExec(release).
		WithArgs(StatusPending, int64(9), StatusDelivering, mine).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// the row now carries another holder's token, so nothing matches
	mock.ExpectExec(release).
		WithArgs(StatusPending, int64(9), StatusDelivering, mine).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, model.ReleaseClaim(context.Background(), 9, mine))
	assert.ErrorIs(t, model.ReleaseClaim(context.Background(), 9, mine), ErrClaimLost)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersModel_MarkDelivered(t *testing.T) {
	model, mock := newOrdersMock(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	claimedAt := at.Add(-time.Minute)

	mark := regexp.QuoteMeta("update `orders` set `status` = ?, `payment_raw` = ?")
	mock.ExpectExec(mark).
		WithArgs(StatusDelivered, `{"source":"manual"}`, at, "<msg@shop>", "[3,4]", int64(7), StatusDelivering, claimedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(mark).
		WithArgs(StatusDelivered, nil, at, "<msg@shop>", "[]", int64(8), StatusDelivering, claimedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := model.MarkDelivered(ctx, 7, claimedAt, DeliveredInfo{
		PaymentRaw:  `{"source":"manual"}`,
		DeliveredAt: at,
		MessageId:   "<msg@shop>",
		CodeIds:     []int64{3, 4},
	})
	require.NoError(t, err)

	err = model.MarkDelivered(ctx, 8, claimedAt, DeliveredInfo{DeliveredAt: at, MessageId: "<msg@shop>"})
	assert.ErrorIs(t, err, ErrClaimLost)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersModel_CreateWithItems(t *testing.T) {
	model, mock := newOrdersMock(t)
	ctx := context.Background()

	o := &Orders{
		Id:               42,
		UserId:           sql.NullInt64{Int64: 3, Valid: true},
		Email:            "buyer@example.com",
		Status:           StatusPending,
		PaymentProvider:  "demo",
		PaymentSessionId: "sess-42",
		PaymentAmount:    decimal.RequireFromString("20.00"),
		PaymentCurrency:  "LKR",
	}
	items := []*OrderItems{
		{ProductId: 1, Quantity: 1},
		{ProductId: 2, Quantity: 2},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("insert into `orders`")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("insert into `order_items`")).
		WithArgs(int64(42), int64(0), int64(1), int64(1), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("insert into `order_items`")).
		WithArgs(int64(42), int64(1), int64(2), int64(2), nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, model.CreateWithItems(ctx, o, items))
	assert.Equal(t, int64(42), items[1].OrderId)
	assert.Equal(t, int64(1), items[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersModel_CreateWithItemsRollsBack(t *testing.T) {
	model, mock := newOrdersMock(t)
	boom := errors.New("duplicate session")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("insert into `orders`")).WillReturnError(boom)
	mock.ExpectRollback()

	err := model.CreateWithItems(context.Background(), &Orders{Id: 1}, []*OrderItems{{ProductId: 1, Quantity: 1}})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, model.CreateWithItems(context.Background(), &Orders{Id: 1}, nil), ErrEmptyItems)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderItems_Snapshot(t *testing.T) {
	item := &OrderItems{}
	assert.Nil(t, item.DecodeSnapshot())

	require.NoError(t, item.EncodeSnapshot(&ItemSnapshot{
		Name:     "Go in Action",
		Type:     "ebook",
		Price:    decimal.RequireFromString("12.50"),
		FileInfo: &FileInfo{FileName: "go.pdf"},
	}))
	snap := item.DecodeSnapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "go.pdf", snap.FileInfo.FileName)
	assert.True(t, decimal.RequireFromString("12.5").Equal(snap.Price))

	item.Snapshot = sql.NullString{String: "{not json", Valid: true}
	assert.Nil(t, item.DecodeSnapshot())
}

func TestOrders_DeliveredCodes(t *testing.T) {
	o := &Orders{DeliveredCodeIds: sql.NullString{String: "[5,6]", Valid: true}}
	assert.Equal(t, []int64{5, 6}, o.DeliveredCodes())
	assert.Nil(t, (&Orders{}).DeliveredCodes())
}

package premiumcode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var codeColumns = []string{"id", "product_id", "encrypted_code", "is_assigned", "assigned_order_id", "assigned_email", "assigned_at", "created_at"}

func newCodesMock(t *testing.T) (PremiumCodesModel, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPremiumCodesModel(sqlx.NewSqlConnFromDB(db)), mock
}

func TestPremiumCodesModel_ClaimOne(t *testing.T) {
	model, mock := newCodesMock(t)
	ctx := context.Background()
	at := time.Now()

	claim := regexp.QuoteMeta("`id` = LAST_INSERT_ID(`id`) where `product_id` = ? and `is_assigned` = 0 order by `id` limit 1")
	mock.ExpectExec(claim).
		WithArgs(int64(42), "buyer@example.com", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("where `id` = ? limit 1")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(codeColumns).
			AddRow(int64(11), int64(5), "aa:bb", int64(1), int64(42), "buyer@example.com", at, at))

	code, err := model.ClaimOne(ctx, 5, 42, "buyer@example.com", at)
	require.NoError(t, err)
	assert.Equal(t, int64(11), code.Id)
	assert.Equal(t, "aa:bb", code.EncryptedCode)
	assert.Equal(t, int64(42), code.AssignedOrderId.Int64)

	mock.ExpectExec(claim).
		WithArgs(int64(42), "buyer@example.com", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = model.ClaimOne(ctx, 5, 42, "buyer@example.com", at)
	assert.ErrorIs(t, err, ErrNoneAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPremiumCodesModel_ClaimOneStorageError(t *testing.T) {
	model, mock := newCodesMock(t)
	boom := errors.New("deadlock")

	mock.ExpectExec(regexp.QuoteMeta("LAST_INSERT_ID")).WillReturnError(boom)

	_, err := model.ClaimOne(context.Background(), 5, 42, "buyer@example.com", time.Now())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoneAvailable)
}

func TestPremiumCodesModel_InsertBatchChunks(t *testing.T) {
	model, mock := newCodesMock(t)

	codes := make([]string, insertChunk+2)
	for i := range codes {
		codes[i] = fmt.Sprintf("iv%d:ct%d", i, i)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("insert into `premium_codes` (`product_id`,`encrypted_code`) values (?, ?),(?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, int64(insertChunk)))
	mock.ExpectExec(regexp.QuoteMeta("insert into `premium_codes` (`product_id`,`encrypted_code`) values (?, ?),(?, ?)")).
		WithArgs(int64(9), codes[insertChunk], int64(9), codes[insertChunk+1]).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := model.InsertBatch(context.Background(), 9, codes)
	require.NoError(t, err)
	assert.Equal(t, int64(insertChunk+2), n)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = model.InsertBatch(context.Background(), 9, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestPremiumCodesModel_CountAvailable(t *testing.T) {
	model, mock := newCodesMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("select count(1) from `premium_codes` where `product_id` = ? and `is_assigned` = 0")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count(1)"}).AddRow(int64(4)))

	n, err := model.CountAvailable(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

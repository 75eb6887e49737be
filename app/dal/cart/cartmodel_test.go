package cart

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

func TestCartModel_ClearByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	model := NewCartModel(sqlx.NewSqlConnFromDB(db))
	mock.ExpectExec(regexp.QuoteMeta("delete from `carts` where `user_id` = ?")).
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := model.ClearByUser(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "rejections", []string{"url", "score"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"rejections"}, []string{"url", "score"}).WillReturnResult(3)

	rows := [][]any{
		{"https://example.ng/a", 20},
		{"https://example.ng/b", 0},
		{"https://example.ng/c", 35},
	}
	n, err := CopyFrom(context.Background(), mock, "rejections", []string{"url", "score"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"rejections"}, []string{"url"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "rejections", []string{"url"}, [][]any{{"https://example.ng/a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO rejections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	errFn := errors.New("insert failed")

	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		fn          func(tx *sql.Tx) error
		expectedErr string
		sameErr     error
	}{
		{
			name: "commits on success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM universities`).WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			fn: func(tx *sql.Tx) error {
				_, err := tx.Exec(`DELETE FROM universities WHERE NOT is_active`)
				return err
			},
		},
		{
			name: "rolls back and returns fn error as is",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:      func(tx *sql.Tx) error { return errFn },
			sameErr: errFn,
		},
		{
			name: "begin failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
			},
			fn:          func(tx *sql.Tx) error { return nil },
			expectedErr: "begin transaction: too many connections",
		},
		{
			name: "commit failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			fn:          func(tx *sql.Tx) error { return nil },
			expectedErr: "commit transaction: serialization failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			err = WithTx(context.Background(), db, tt.fn)

			switch {
			case tt.sameErr != nil:
				assert.Same(t, tt.sameErr, err)
			case tt.expectedErr != "":
				assert.EqualError(t, err, tt.expectedErr)
			default:
				assert.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	client := &PostgresClient{DB: db}

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.EqualError(t, client.Ping(context.Background()), "postgres ping failed: connection refused")

	require.NoError(t, mock.ExpectationsWereMet())
}

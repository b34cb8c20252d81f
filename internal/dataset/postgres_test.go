// File: internal/dataset/postgres_test.go
package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostgresSink(t *testing.T) {
	t.Parallel()

	t.Run("inserts a full row", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		sink := NewPostgresSinkWithConn(mock, zap.NewNop())
		row := sampleRow()
		args := sink.insertArgs(row)
		require.Len(t, args, len(Columns))

		mock.ExpectExec("INSERT INTO site_signals").
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, sink.Append(context.Background(), row))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed row inserts null signal columns", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		row := MinimalRow("https://dead.example.com", rowTime)
		args := make([]any, len(Columns))
		args[0] = row.URL
		args[1] = rowTime

		mock.ExpectExec("INSERT INTO site_signals").
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		sink := NewPostgresSinkWithConn(mock, zap.NewNop())
		require.NoError(t, sink.Append(context.Background(), row))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failures surface", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO site_signals").
			WillReturnError(errors.New("connection reset"))

		sink := NewPostgresSinkWithConn(mock, zap.NewNop())
		err = sink.Append(context.Background(), sampleRow())
		assert.Error(t, err)
	})

	t.Run("ensure schema creates the table", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS site_signals").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))

		sink := NewPostgresSinkWithConn(mock, zap.NewNop())
		require.NoError(t, sink.ensureSchema(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

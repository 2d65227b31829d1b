package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"002_add_indexes.up.sql":     {Data: []byte("CREATE INDEX idx_reviews_reviewee ON reviews (reviewee_id)")},
		"001_create_tables.up.sql":   {Data: []byte("CREATE TABLE reviews (id UUID PRIMARY KEY)")},
		"001_create_tables.down.sql": {Data: []byte("DROP TABLE reviews")},
		"README.md":                  {Data: []byte("not a migration")},
	}
}

func expectTrackingTable(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
}

func expectApplied(mock pgxmock.PgxPoolIface, version string, applied bool) {
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(version).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(applied))
}

func TestPendingMigrations_OrdersUpFilesOnly(t *testing.T) {
	names, err := pendingMigrations(testMigrations())

	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_tables.up.sql", "002_add_indexes.up.sql"}, names)
}

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	expectTrackingTable(mock)
	expectApplied(mock, "001_create_tables.up.sql", false)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE reviews").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("001_create_tables.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	expectApplied(mock, "002_add_indexes.up.sql", false)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX idx_reviews_reviewee").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("002_add_indexes.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SkipsAppliedVersions(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	expectTrackingTable(mock)
	expectApplied(mock, "001_create_tables.up.sql", true)
	expectApplied(mock, "002_add_indexes.up.sql", true)

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SQLErrorRollsBackWithoutRetry(t *testing.T) {
	mock, err := NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	expectTrackingTable(mock)
	expectApplied(mock, "001_create_tables.up.sql", false)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE reviews").WillReturnError(errors.New(`syntax error at or near "TABLE"`))
	mock.ExpectRollback()

	err = RunMigrations(context.Background(), mock, testMigrations(), discardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 001_create_tables.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

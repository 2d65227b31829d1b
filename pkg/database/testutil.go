package database

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool creates a pgxmock pool that satisfies DBTX and MigrationDB.
// Queries are matched as regular expressions (pgxmock's default).
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool()
}

// MockPool is NewMockPool for tests: it fails t on construction errors and
// reports unmet expectations when the test finishes.
func MockPool(t testing.TB) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := NewMockPool()
	if err != nil {
		t.Fatalf("create mock pool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet database expectations: %v", err)
		}
	})
	return mock
}

package testsupport

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteMemoryDB opens a named shared-cache in-memory SQLite database.
// Distinct names keep parallel tests isolated.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return sqldb, nil
}

// NewBunSQLiteDB wraps NewSQLiteMemoryDB in a bun.DB closed on test cleanup.
func NewBunSQLiteDB(tb testing.TB, name string) *bun.DB {
	tb.Helper()

	sqldb, err := NewSQLiteMemoryDB(name)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

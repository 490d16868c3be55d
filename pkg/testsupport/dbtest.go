package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBSeq atomic.Uint64

// MemoryDSN returns a shared-cache in-memory sqlite DSN that is unique to
// name, so parallel tests never see each other's tables.
func MemoryDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		name = "webedit"
	}
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, memoryDBSeq.Add(1))
}

// NewBunSQLite opens a fresh in-memory database for t and closes it on cleanup.
// A single connection keeps the shared cache alive for the test's lifetime.
func NewBunSQLite(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", MemoryDSN(t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

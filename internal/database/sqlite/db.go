// Package sqlite provides a SQLite user store on modernc.org/sqlite. It runs
// the same predicate and window translation as the PostgreSQL store.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	sqlitedriver "modernc.org/sqlite"

	"github.com/chybatronik/goUserFilter/internal/querydsl"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// lowerFunc applies querydsl.Lower. The built-in LOWER only folds ASCII.
const lowerFunc = "unicode_lower"

//go:embed schema.sql
var schema string

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(lowerFunc, 1,
		func(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return querydsl.Lower(v), nil
			case []byte:
				return querydsl.Lower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Open opens the database at path with foreign keys enforced and applies the
// schema. An in-memory database is limited to one connection so every query
// sees the same data.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	memory := path == MemoryPath
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if memory {
		db.SetMaxOpenConns(1)
	} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return db, nil
}

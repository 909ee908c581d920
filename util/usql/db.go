// Package usql wraps database/sql so every statement is timed in the gocore
// stats tree under "SQL".
package usql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ordishs/gocore"
)

var (
	stat = gocore.NewStat("SQL")
)

type DB struct {
	*sql.DB
	engine string
}

func Open(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, engine: driverName}, nil
}

// Engine returns the driver name the DB was opened with.
func (db *DB) Engine() string {
	return db.engine
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := gocore.CurrentTime()
	defer func() {
		stat.NewStat(statKey(query)).AddTime(start)
	}()

	return db.DB.QueryContext(ctx, query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := gocore.CurrentTime()
	defer func() {
		stat.NewStat(statKey(query)).AddTime(start)
	}()

	return db.DB.QueryRowContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := gocore.CurrentTime()
	defer func() {
		stat.NewStat(statKey(query)).AddTime(start)
	}()

	return db.DB.ExecContext(ctx, query, args...)
}

// statKey folds whitespace so multi-line statements share a single stat line.
func statKey(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

package usql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestStatKey(t *testing.T) {
	assert.Equal(t, "SELECT COUNT(*) FROM t WHERE a = $1", statKey("SELECT COUNT(*)\n\t\tFROM t\n  WHERE a = $1"))
}

func TestDB_Instrumented(t *testing.T) {
	db, err := Open("sqlite", "file:usql_test?mode=memory&cache=shared")
	require.NoError(t, err)

	defer db.Close()

	assert.Equal(t, "sqlite", db.Engine())

	ctx := context.Background()

	_, err = db.ExecContext(ctx, `CREATE TABLE t (a INTEGER)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO t (a) VALUES ($1), ($2)`, 1, 2)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM t`).Scan(&count))
	assert.Equal(t, 2, count)

	rows, err := db.QueryContext(ctx, `SELECT a FROM t ORDER BY a DESC`)
	require.NoError(t, err)

	defer rows.Close()

	var values []int

	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		values = append(values, v)
	}

	require.NoError(t, rows.Err())
	assert.Equal(t, []int{2, 1}, values)
}

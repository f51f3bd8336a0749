package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	d, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func TestMigrationsApply(t *testing.T) {
	d := openTest(t)

	for _, table := range []string{"entries", "tags", "entry_tags", "profiles"} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	v, dirty, err := Version(d)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.False(t, dirty)
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := openTest(t)
	assert.NoError(t, Migrate(d))
}

func TestTestDatabasesAreIsolated(t *testing.T) {
	a := openTest(t)
	b := openTest(t)

	_, err := a.Exec(`INSERT INTO profiles (id, updated_at) VALUES ('u1', 0)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, b.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestTagUniquePerUser(t *testing.T) {
	d := openTest(t)

	_, err := d.Exec(`INSERT INTO tags (id, user_id, name, created_at) VALUES ('t1', 'u1', 'beach', 0)`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO tags (id, user_id, name, created_at) VALUES ('t2', 'u2', 'beach', 0)`)
	require.NoError(t, err)
	_, err = d.Exec(`INSERT INTO tags (id, user_id, name, created_at) VALUES ('t3', 'u1', 'beach', 0)`)
	assert.Error(t, err)
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		url         string
		wantDriver  string
		wantDialect Dialect
	}{
		{"postgres://u:p@localhost:5432/moments", "pgx", DialectPostgres},
		{"postgresql://localhost/moments", "pgx", DialectPostgres},
		{"libsql://moments-me.turso.io?authToken=x", "libsql", DialectSQLite},
		{"wss://moments-me.turso.io", "libsql", DialectSQLite},
		{"file:moments.db?mode=rwc", "sqlite", DialectSQLite},
		{"./moments.db", "sqlite", DialectSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, dialect := resolveDriver(tt.url)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDialect, dialect)
			assert.NotEmpty(t, dsn)
		})
	}

	_, dsn, _ := resolveDriver("./moments.db")
	assert.Equal(t, "file:./moments.db?cache=shared&mode=rwc&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dsn)
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	lite := &DB{Dialect: DialectSQLite}

	q := "SELECT id FROM entries WHERE user_id = ? AND created_at BETWEEN ? AND ?"
	assert.Equal(t, "SELECT id FROM entries WHERE user_id = $1 AND created_at BETWEEN $2 AND $3", pg.Rebind(q))
	assert.Equal(t, q, lite.Rebind(q))
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	d := openTest(t)

	err := d.WithTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO profiles (id, updated_at) VALUES ('u1', 0)`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countProfiles(t, d))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	d := openTest(t)

	err := d.WithTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO profiles (id, updated_at) VALUES ('u1', 0)`)
		require.NoError(t, err)
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, countProfiles(t, d))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	d := openTest(t)

	assert.Panics(t, func() {
		_ = d.WithTx(context.Background(), func(ctx context.Context, tx DBTX) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO profiles (id, updated_at) VALUES ('u1', 0)`)
			require.NoError(t, err)
			panic("kaput")
		})
	})
	assert.Equal(t, 0, countProfiles(t, d))
}

func countProfiles(t *testing.T, d *DB) int {
	t.Helper()
	var n int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&n))
	return n
}

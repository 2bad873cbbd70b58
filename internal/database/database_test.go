package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/spordle/assets"
)

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "app.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, db.Ping())
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, assets.Migrations()))
	require.NoError(t, Migrate(db, assets.Migrations()))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 3, n)

	insert := `INSERT INTO songs (title, title_key, artists, year, genres, types, length, created_at)
	           VALUES ('a','a','[]',2000,'[]','[]',1,'2026-01-01T00:00:00Z')`
	_, err = db.Exec(insert)
	assert.NoError(t, err)
	_, err = db.Exec(insert)
	assert.Error(t, err, "title_key is unique")
}

func TestMigrate_BadSQLRollsBack(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_ok.sql":  {Data: []byte(`CREATE TABLE t (id INTEGER);`)},
		"002_bad.sql": {Data: []byte(`CREATE TABLE nope (`)},
	}
	assert.Error(t, Migrate(db, fsys))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

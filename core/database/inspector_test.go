package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE world_heads (world_id TEXT PRIMARY KEY, version INTEGER, object_key TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "world_heads")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "text", colMap["world_id"])
	assert.Equal(t, "integer", colMap["version"])
	assert.Equal(t, "text", colMap["object_key"])

	// PRAGMA table_info returns no rows for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE world_versions (id INTEGER PRIMARY KEY, world_id TEXT)").Error)

	missing, err := MissingColumns(db, "world_versions", []string{"id", "world_id", "version", "Author"})
	require.NoError(t, err)
	assert.Equal(t, []string{"version", "Author"}, missing)

	missing, err = MissingColumns(db, "absent", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_Ordered(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, "00001_catalogs", migrations[0].Version)
	assert.Equal(t, "00003_documents", migrations[2].Version)
	for _, m := range migrations {
		assert.NotContains(t, m.Up, "DROP TABLE", m.Version)
		assert.NotEmpty(t, m.Up, m.Version)
	}
}

func TestMigrations_BalanceConstraints(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)

	assert.Contains(t, migrations[1].Up, "CHECK (quantity >= 0)")
	assert.Contains(t, migrations[1].Up, "PRIMARY KEY (warehouse_id, product_id)")
}

func TestUpSection(t *testing.T) {
	up, err := upSection("-- +goose Up\nCREATE TABLE a ();\n-- +goose Down\nDROP TABLE a;\n")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE a ();", up)

	_, err = upSection("CREATE TABLE a ();")
	assert.Error(t, err)
}

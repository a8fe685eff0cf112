package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseCatalogRepo_SelectColumns(t *testing.T) {
	repo := NewWarehouseRepo(nil)

	sql, args, err := repo.baseSelect().ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, created_at, updated_at, code, name, address FROM cat_warehouses", sql)
	assert.Empty(t, args)
}

func TestBaseCatalogRepo_Search(t *testing.T) {
	repo := NewProductRepo(nil)

	sql, args, err := repo.applySearch(repo.baseSelect(), "  bolt ").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM cat_products WHERE (sku ILIKE $1 OR name ILIKE $2)")
	assert.Equal(t, []any{"%bolt%", "%bolt%"}, args)
}

func TestBaseCatalogRepo_EmptySearch(t *testing.T) {
	repo := NewSupplierRepo(nil)

	sql, _, err := repo.applySearch(repo.baseSelect(), " ").ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
}

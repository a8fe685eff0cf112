package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/documents"
	"stockledger/internal/infrastructure/storage/postgres"
)

func TestLineColumns(t *testing.T) {
	assert.Equal(t, []string{"document_id", "line_no", "product_id", "quantity"}, lineItemCols)
	assert.Equal(t, []string{
		"document_id", "line_no", "product_id", "system_quantity", "actual_quantity", "difference",
	}, countItemCols)
}

func TestHeaderColumns_ExcludeItems(t *testing.T) {
	repo := NewStockInRepo(nil)

	assert.Contains(t, repo.cols, "warehouse_id")
	assert.Contains(t, repo.cols, "deleted_at")
	assert.NotContains(t, repo.cols, "items")
}

func TestFiltered_LiveOnlyByDefault(t *testing.T) {
	repo := NewStockOutRepo(nil)

	sql, args, err := repo.filtered(postgres.Builder().Select("id").From(repo.table), documents.ListFilter{}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM doc_stock_outs WHERE deleted_at IS NULL", sql)
	assert.Empty(t, args)
}

func TestFiltered_DeletedOnly(t *testing.T) {
	repo := NewStockOutRepo(nil)

	sql, _, err := repo.filtered(postgres.Builder().Select("id").From(repo.table),
		documents.ListFilter{Deleted: documents.DeletedOnly}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM doc_stock_outs WHERE deleted_at IS NOT NULL", sql)
}

func TestFiltered_TransferMatchesEitherWarehouse(t *testing.T) {
	repo := NewStockTransferRepo(nil)
	wh := id.New()
	status := entity.StatusConfirmed

	sql, args, err := repo.filtered(postgres.Builder().Select("id").From(repo.table), documents.ListFilter{
		Status:      &status,
		WarehouseID: &wh,
		Code:        " TR ",
		Deleted:     documents.IncludeDeleted,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM doc_stock_transfers WHERE status = $1 "+
			"AND (from_warehouse_id = $2 OR to_warehouse_id = $3) AND code ILIKE $4",
		sql)
	require.Len(t, args, 4)
	assert.Equal(t, "%TR%", args[3])
}

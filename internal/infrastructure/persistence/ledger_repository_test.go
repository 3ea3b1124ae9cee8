package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormLedgerRepository_Append(t *testing.T) {
	t.Run("inserts all entries in one statement", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormLedgerRepository(db)

		tenantID, areaID, productID := uuid.New(), uuid.New(), uuid.New()
		now := time.Now()
		entries := []*stock.LedgerEntry{
			{ID: uuid.New(), TenantID: tenantID, AreaID: areaID, ProductID: productID, Quantity: -3, OccurredAt: now, SourceType: stock.LedgerSourceTransfer, CreatedAt: now},
			{ID: uuid.New(), TenantID: tenantID, AreaID: uuid.New(), ProductID: productID, Quantity: 3, OccurredAt: now, SourceType: stock.LedgerSourceTransfer, CreatedAt: now},
		}

		mock.ExpectExec(`INSERT INTO "stock_ledger_entries" .* VALUES \(.*\),\(.*\)`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		require.NoError(t, repo.Append(context.Background(), entries...))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no entries is a no-op", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormLedgerRepository(db)

		require.NoError(t, repo.Append(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_FindByArea(t *testing.T) {
	db, mock := openMockGorm(t)
	repo := NewGormLedgerRepository(db)

	tenantID, areaID, productID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	filter := shared.Filter{Page: 1, PageSize: 10, OrderBy: "occurred_at", OrderDir: "desc"}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_ledger_entries" WHERE area_id = \$1 AND tenant_id = \$2`).
		WithArgs(areaID, tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "stock_ledger_entries" WHERE area_id = \$1 AND tenant_id = \$2 ORDER BY occurred_at DESC LIMIT \$3`).
		WithArgs(areaID, tenantID, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "area_id", "product_id", "quantity", "occurred_at", "source_type", "source_id", "note", "created_at"}).
			AddRow(uuid.New().String(), tenantID.String(), areaID.String(), productID.String(), 12, now, "ADJUSTMENT", nil, "count", now))

	entries, total, err := repo.FindByArea(context.Background(), tenantID, areaID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(12), entries[0].Quantity)
	assert.Equal(t, stock.LedgerSourceAdjustment, entries[0].SourceType)
	assert.Nil(t, entries[0].SourceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

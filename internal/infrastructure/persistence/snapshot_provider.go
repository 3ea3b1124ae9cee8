package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stockplan/backend/internal/domain/planning"
)

// SQLStockSnapshotProvider computes on-hand quantities by summing the stock
// ledger up to an instant. Only positive balances are returned.
type SQLStockSnapshotProvider struct {
	db *sqlx.DB
}

// NewSQLStockSnapshotProvider creates a provider over db.
func NewSQLStockSnapshotProvider(db *sqlx.DB) *SQLStockSnapshotProvider {
	return &SQLStockSnapshotProvider{db: db}
}

type snapshotRow struct {
	AreaID    uuid.UUID `db:"area_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int64     `db:"quantity"`
}

const snapshotQuery = `SELECT area_id, product_id, SUM(quantity) AS quantity
FROM stock_ledger_entries
WHERE area_id IN (?) AND occurred_at <= ?`

const snapshotGroupBy = `
GROUP BY area_id, product_id
HAVING SUM(quantity) > 0`

// Snapshot implements planning.StockSnapshotProvider.
func (p *SQLStockSnapshotProvider) Snapshot(ctx context.Context, areaIDs []uuid.UUID, asOf time.Time, productFilter []uuid.UUID) (planning.Snapshot, error) {
	if len(areaIDs) == 0 {
		return planning.Snapshot{}, nil
	}

	query := snapshotQuery
	args := []interface{}{areaIDs, asOf}
	if len(productFilter) > 0 {
		query += " AND product_id IN (?)"
		args = append(args, productFilter)
	}
	query += snapshotGroupBy

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = p.db.Rebind(query)

	var rows []snapshotRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make(planning.Snapshot, len(rows))
	for _, r := range rows {
		out[planning.StockKey{AreaID: r.AreaID, ProductID: r.ProductID}] = r.Quantity
	}
	return out, nil
}

var _ planning.StockSnapshotProvider = (*SQLStockSnapshotProvider)(nil)

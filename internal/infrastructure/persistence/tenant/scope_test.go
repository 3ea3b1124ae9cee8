package tenant

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (row) TableName() string { return "rows" }

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestScope(t *testing.T) {
	t.Run("adds tenant condition", func(t *testing.T) {
		db, mock := newMockDB(t)
		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "rows" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}).AddRow(uuid.New(), tenantID))

		var rows []row
		require.NoError(t, db.Scopes(Scope(tenantID)).Find(&rows).Error)
		assert.Len(t, rows, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil tenant fails without querying", func(t *testing.T) {
		db, mock := newMockDB(t)

		var rows []row
		err := db.Scopes(Scope(uuid.Nil)).Find(&rows).Error
		assert.ErrorIs(t, err, shared.ErrMissingScope)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

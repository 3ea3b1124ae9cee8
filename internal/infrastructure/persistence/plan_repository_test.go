package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var planColumns = []string{"id", "tenant_id", "version", "created_at", "updated_at", "name", "description", "include_excess", "state", "computed_at"}

func newComputedPlan(t *testing.T) *planning.Plan {
	t.Helper()
	plan, err := planning.NewPlan(uuid.New(), "Weekly")
	require.NoError(t, err)

	area, req := uuid.New(), uuid.New()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	line, err := planning.NewPlanLine(uuid.New(), 5, planning.AreaRef(area), nil, planning.RequestRef(req), &day)
	require.NoError(t, err)
	require.NoError(t, plan.ReplaceLines([]planning.PlanLine{line}, day))
	return plan
}

func TestGormPlanRepository_FindByIDWithLines(t *testing.T) {
	db, mock := openMockGorm(t)
	repo := NewGormPlanRepository(db)

	tenantID, planID, productID, reqID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE id = \$1 AND tenant_id = \$2 ORDER BY .* LIMIT .*`).
		WithArgs(planID, tenantID, 1).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(planID.String(), tenantID.String(), 4, now, now, "Weekly", "", true, "ACTIVE", now))
	mock.ExpectQuery(`SELECT \* FROM "plan_lines" WHERE "plan_lines"."plan_id" = \$1 ORDER BY sequence ASC`).
		WithArgs(planID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plan_id", "sequence", "product_id", "quantity", "source_kind", "source_id", "source_date", "destination_kind", "destination_id", "destination_date"}).
			AddRow(uuid.New().String(), planID.String(), 1, productID.String(), 3, "", nil, nil, "REQUEST", reqID.String(), day))

	plan, err := repo.FindByIDWithLines(context.Background(), tenantID, planID)
	require.NoError(t, err)
	assert.Equal(t, planning.PlanStateActive, plan.State)
	require.True(t, plan.HasBaseline())
	require.Len(t, plan.Lines, 1)

	line := plan.Lines[0]
	assert.True(t, line.IsWithoutStock())
	assert.True(t, line.References(reqID))
	assert.Equal(t, int64(3), line.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPlanRepository_FindActive_NotFound(t *testing.T) {
	db, mock := openMockGorm(t)
	repo := NewGormPlanRepository(db)

	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE state = \$1 AND tenant_id = \$2`).
		WithArgs("ACTIVE", tenantID, 1).
		WillReturnRows(sqlmock.NewRows(planColumns))

	plan, err := repo.FindActive(context.Background(), tenantID)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPlanRepository_FindByState(t *testing.T) {
	db, mock := openMockGorm(t)
	repo := NewGormPlanRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE state = \$1 ORDER BY tenant_id ASC,id ASC`).
		WithArgs("ACTIVE").
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(uuid.New().String(), uuid.New().String(), 1, now, now, "A", "", false, "ACTIVE", nil).
			AddRow(uuid.New().String(), uuid.New().String(), 1, now, now, "B", "", true, "ACTIVE", now))

	plans, err := repo.FindByState(context.Background(), planning.PlanStateActive)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[0].HasBaseline())
	assert.Nil(t, plans[0].Lines)
	assert.True(t, plans[1].IncludeExcess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPlanRepository_ReplaceLines(t *testing.T) {
	t.Run("swaps lines in one transaction", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan := newComputedPlan(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "plans" SET "computed_at"=\$1,"updated_at"=\$2,"version"=\$3 WHERE .*id = \$4 AND version = \$5 AND state IN \(\$6,\$7\).* AND tenant_id = \$8`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), plan.Version, plan.ID, plan.Version-1, "DRAFT", "ACTIVE", plan.TenantID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "plan_lines" WHERE plan_id = \$1`).
			WithArgs(plan.ID).
			WillReturnResult(sqlmock.NewResult(0, 7))
		mock.ExpectExec(`INSERT INTO "plan_lines"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceLines(context.Background(), plan))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the plan left recomputable states", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan := newComputedPlan(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "plans"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "plans" WHERE .*id = \$1 AND state IN \(\$2,\$3\).* AND tenant_id = \$4`).
			WithArgs(plan.ID, "DRAFT", "ACTIVE", plan.TenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectRollback()

		err := repo.ReplaceLines(context.Background(), plan)
		assert.ErrorIs(t, err, planning.ErrPlanNotRecomputable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when another writer bumped the version", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan := newComputedPlan(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "plans"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "plans"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.ReplaceLines(context.Background(), plan)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, shared.CodeConflict, shared.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result only clears lines", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan := newComputedPlan(t)
		plan.Lines = nil

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "plans"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "plan_lines"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceLines(context.Background(), plan))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPlanRepository_Save(t *testing.T) {
	t.Run("new plan is inserted", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan, err := planning.NewPlan(uuid.New(), "Weekly", planning.WithIncludeExcess(false))
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "plans"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), plan))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update checks the loaded version", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan, err := planning.NewPlan(uuid.New(), "Weekly")
		require.NoError(t, err)
		require.NoError(t, plan.Update("Week 12", "", true))
		require.Equal(t, 2, plan.Version)

		mock.ExpectExec(`UPDATE "plans" SET "computed_at"=\$1,"description"=\$2,"include_excess"=\$3,"name"=\$4,"state"=\$5,"updated_at"=\$6,"version"=\$7 WHERE .*id = \$8 AND version = \$9.* AND tenant_id = \$10`).
			WithArgs(sqlmock.AnyArg(), "", true, "Week 12", "DRAFT", sqlmock.AnyArg(), 2, plan.ID, 1, plan.TenantID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Save(context.Background(), plan))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		db, mock := openMockGorm(t)
		repo := NewGormPlanRepository(db)
		plan, err := planning.NewPlan(uuid.New(), "Weekly")
		require.NoError(t, err)
		require.NoError(t, plan.Cancel())

		mock.ExpectExec(`UPDATE "plans" .* WHERE .*id = \$8 AND version = \$9`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Save(context.Background(), plan)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, shared.CodeConflict, shared.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

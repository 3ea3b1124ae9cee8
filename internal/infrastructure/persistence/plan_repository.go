package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/infrastructure/persistence/models"
	"github.com/stockplan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lineBatchSize bounds the rows per INSERT when storing plan lines.
const lineBatchSize = 500

var recomputableStates = []string{
	string(planning.PlanStateDraft),
	string(planning.PlanStateActive),
}

// GormPlanRepository implements planning.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID loads a plan without its lines
func (r *GormPlanRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*planning.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDWithLines loads a plan with its lines in sequence order
func (r *GormPlanRepository) FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*planning.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if model.Lines == nil {
		model.Lines = []models.PlanLineModel{}
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of plans and the total count
func (r *GormPlanRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]planning.Plan, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PlanModel{}).Scopes(tenant.Scope(tenantID))
	if v, ok := filter.Filters["state"].(string); ok && v != "" {
		query = query.Where("state = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PlanModel
	if err := paginate(query, filter, PlanSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return plansToDomain(rows), total, nil
}

// FindByState lists plans in a state across all tenants
func (r *GormPlanRepository) FindByState(ctx context.Context, state planning.PlanState) ([]planning.Plan, error) {
	var rows []models.PlanModel
	if err := r.db.WithContext(ctx).
		Where("state = ?", string(state)).
		Order("tenant_id ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return plansToDomain(rows), nil
}

// FindActive returns the tenant's active plan
func (r *GormPlanRepository) FindActive(ctx context.Context, tenantID uuid.UUID) (*planning.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("state = ?", string(planning.PlanStateActive)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts a new plan or updates the plan row. Lines are written only by
// ReplaceLines. An update applies only while the stored version is the one
// the plan was loaded at; otherwise shared.ErrConcurrencyConflict.
func (r *GormPlanRepository) Save(ctx context.Context, plan *planning.Plan) error {
	if plan.Version <= 1 {
		model := models.PlanModelFromDomain(plan)
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error
	}

	result := r.db.WithContext(ctx).
		Model(&models.PlanModel{}).
		Scopes(tenant.Scope(plan.TenantID)).
		Where("id = ? AND version = ?", plan.ID, plan.Version-1).
		Updates(map[string]interface{}{
			"name":           plan.Name,
			"description":    plan.Description,
			"include_excess": plan.IncludeExcess,
			"state":          string(plan.State),
			"computed_at":    plan.ComputedAt,
			"version":        plan.Version,
			"updated_at":     plan.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReplaceLines swaps the stored lines for plan.Lines in one transaction. The
// plan row is updated only while it is still recomputable and unchanged
// since it was loaded, so a concurrent cancel wins over a late recalculation.
func (r *GormPlanRepository) ReplaceLines(ctx context.Context, plan *planning.Plan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PlanModel{}).
			Scopes(tenant.Scope(plan.TenantID)).
			Where("id = ? AND version = ? AND state IN ?", plan.ID, plan.Version-1, recomputableStates).
			Updates(map[string]interface{}{
				"computed_at": plan.ComputedAt,
				"version":     plan.Version,
				"updated_at":  plan.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var open int64
			if err := tx.Model(&models.PlanModel{}).
				Scopes(tenant.Scope(plan.TenantID)).
				Where("id = ? AND state IN ?", plan.ID, recomputableStates).
				Count(&open).Error; err != nil {
				return err
			}
			if open > 0 {
				return shared.ErrConcurrencyConflict
			}
			return planning.ErrPlanNotRecomputable
		}

		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.PlanLineModel{}).Error; err != nil {
			return err
		}
		if len(plan.Lines) == 0 {
			return nil
		}
		rows := make([]models.PlanLineModel, len(plan.Lines))
		for i, l := range plan.Lines {
			rows[i] = models.PlanLineModelFromDomain(l)
		}
		return tx.CreateInBatches(rows, lineBatchSize).Error
	})
}

func plansToDomain(rows []models.PlanModel) []planning.Plan {
	plans := make([]planning.Plan, len(rows))
	for i := range rows {
		plans[i] = *rows[i].ToDomain()
	}
	return plans
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
)

// PlanModel is the persistence model for the Plan aggregate. Lines live in
// their own table and are loaded only when asked for.
type PlanModel struct {
	TenantAggregateModel
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	IncludeExcess bool            `gorm:"not null"`
	State         string          `gorm:"type:varchar(20);not null;index"`
	ComputedAt    *time.Time      `gorm:""`
	Lines         []PlanLineModel `gorm:"foreignKey:PlanID;references:ID"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the model to a domain Plan. Lines is nil unless the
// association was preloaded.
func (m *PlanModel) ToDomain() *planning.Plan {
	p := &planning.Plan{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
		IncludeExcess:       m.IncludeExcess,
		State:               planning.PlanState(m.State),
		ComputedAt:          m.ComputedAt,
	}
	if m.Lines != nil {
		p.Lines = make([]planning.PlanLine, len(m.Lines))
		for i := range m.Lines {
			p.Lines[i] = m.Lines[i].ToDomain()
		}
	}
	return p
}

// PlanModelFromDomain creates a model from a domain Plan without its lines.
func PlanModelFromDomain(p *planning.Plan) *PlanModel {
	m := &PlanModel{
		Name:          p.Name,
		Description:   p.Description,
		IncludeExcess: p.IncludeExcess,
		State:         string(p.State),
		ComputedAt:    p.ComputedAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// PlanLineModel is one emitted pairing. Both refs are stored as a kind
// column plus a nullable id.
type PlanLineModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PlanID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_plan_line_plan_seq,priority:1"`
	Sequence        int        `gorm:"not null;index:idx_plan_line_plan_seq,priority:2"`
	ProductID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity        int64      `gorm:"not null"`
	SourceKind      string     `gorm:"type:varchar(10);not null;default:''"`
	SourceID        *uuid.UUID `gorm:"type:uuid;index"`
	SourceDate      *time.Time `gorm:"type:date"`
	DestinationKind string     `gorm:"type:varchar(10);not null;default:''"`
	DestinationID   *uuid.UUID `gorm:"type:uuid;index"`
	DestinationDate *time.Time `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (PlanLineModel) TableName() string {
	return "plan_lines"
}

// ToDomain converts the model to a domain PlanLine.
func (m *PlanLineModel) ToDomain() planning.PlanLine {
	return planning.PlanLine{
		ID:              m.ID,
		PlanID:          m.PlanID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		Source:          lineRef(m.SourceKind, m.SourceID),
		SourceDate:      utcDate(m.SourceDate),
		Destination:     lineRef(m.DestinationKind, m.DestinationID),
		DestinationDate: utcDate(m.DestinationDate),
		Sequence:        m.Sequence,
	}
}

// PlanLineModelFromDomain creates a model from a domain PlanLine.
func PlanLineModelFromDomain(l planning.PlanLine) PlanLineModel {
	return PlanLineModel{
		ID:              l.ID,
		PlanID:          l.PlanID,
		Sequence:        l.Sequence,
		ProductID:       l.ProductID,
		Quantity:        l.Quantity,
		SourceKind:      string(l.Source.Kind),
		SourceID:        l.Source.IDPtr(),
		SourceDate:      l.SourceDate,
		DestinationKind: string(l.Destination.Kind),
		DestinationID:   l.Destination.IDPtr(),
		DestinationDate: l.DestinationDate,
	}
}

// lineRef rebuilds a ref. Rows written by this package are always
// consistent; an unknown kind reads back as no ref.
func lineRef(kind string, id *uuid.UUID) planning.LineRef {
	ref, err := planning.ParseLineRef(kind, id)
	if err != nil {
		return planning.NoRef()
	}
	return ref
}

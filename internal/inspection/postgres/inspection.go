package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal"
	inspectionDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/inspection"
	"github.com/safetrack/epp-inspection/internal/inspection"
)

type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) Create(ctx context.Context, insp *inspection.Inspection) error {
	return r.db.WithContext(ctx).Create(inspection.ToDataModel(insp)).Error
}

// CreateItems writes the verdict batch in one insert.
func (r *InspectionRepository) CreateItems(ctx context.Context, items []inspection.Item) error {
	if len(items) == 0 {
		return nil
	}
	dms := make([]inspectionDatamodel.InspectionItem, 0, len(items))
	for i := range items {
		dms = append(dms, *inspection.ItemToDataModel(&items[i]))
	}
	return r.db.WithContext(ctx).Create(&dms).Error
}

func (r *InspectionRepository) GetByID(ctx context.Context, id string) (*inspection.Inspection, error) {
	var dm inspectionDatamodel.Inspection
	err := r.db.WithContext(ctx).
		Preload("Technician").
		Preload("Items").
		Preload("Items.Epp").
		Where("id = ?", id).
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrInspectionNotFound
		}
		return nil, err
	}
	return inspection.FromDataModel(&dm), nil
}

// ListAll loads every inspection with technician and item detail, newest
// first.
func (r *InspectionRepository) ListAll(ctx context.Context) ([]*inspection.Inspection, error) {
	var dms []inspectionDatamodel.Inspection
	err := r.db.WithContext(ctx).
		Preload("Technician").
		Preload("Items").
		Preload("Items.Epp").
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(dms), nil
}

func (r *InspectionRepository) ListByTechnician(ctx context.Context, technicianID string) ([]*inspection.Inspection, error) {
	var dms []inspectionDatamodel.Inspection
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Epp").
		Where("technician_id = ?", technicianID).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(dms), nil
}

func (r *InspectionRepository) ListPendingForTechnician(ctx context.Context, technicianID string) ([]*inspection.Inspection, error) {
	var dms []inspectionDatamodel.Inspection
	err := r.db.WithContext(ctx).
		Where("technician_id = ? AND status = ?", technicianID, inspection.StatusPending).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(dms), nil
}

func (r *InspectionRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&inspectionDatamodel.Inspection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       inspection.StatusCompleted,
			"completed_at": completedAt,
		}).Error
}

func fromDataModels(dms []inspectionDatamodel.Inspection) []*inspection.Inspection {
	out := make([]*inspection.Inspection, 0, len(dms))
	for i := range dms {
		out = append(out, inspection.FromDataModel(&dms[i]))
	}
	return out
}

package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/catalog"
	catalogDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/catalog"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Create(ctx context.Context, item *catalog.EppItem) error {
	return r.db.WithContext(ctx).Create(catalog.ToDataModel(item)).Error
}

func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.EppItem, error) {
	var dm catalogDatamodel.EppItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCatalogItemNotFound
		}
		return nil, err
	}
	return catalog.FromDataModel(&dm), nil
}

func (r *CatalogRepository) GetByName(ctx context.Context, name string) (*catalog.EppItem, error) {
	var dm catalogDatamodel.EppItem
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCatalogItemNotFound
		}
		return nil, err
	}
	return catalog.FromDataModel(&dm), nil
}

func (r *CatalogRepository) ListActive(ctx context.Context) ([]*catalog.EppItem, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("is_active = ?", true))
}

func (r *CatalogRepository) ListAll(ctx context.Context) ([]*catalog.EppItem, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *CatalogRepository) list(_ context.Context, tx *gorm.DB) ([]*catalog.EppItem, error) {
	var dms []catalogDatamodel.EppItem
	if err := tx.Order("category ASC, name ASC").Find(&dms).Error; err != nil {
		return nil, err
	}

	items := make([]*catalog.EppItem, 0, len(dms))
	for i := range dms {
		items = append(items, catalog.FromDataModel(&dms[i]))
	}
	return items, nil
}

func (r *CatalogRepository) Update(ctx context.Context, item *catalog.EppItem) error {
	return r.db.WithContext(ctx).Model(&catalogDatamodel.EppItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"category":    item.Category,
			"is_critical": item.IsCritical,
		}).Error
}

func (r *CatalogRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).Model(&catalogDatamodel.EppItem{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&catalogDatamodel.EppItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrCatalogItemNotFound
	}
	return nil
}

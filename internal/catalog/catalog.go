package catalog

import (
	"time"

	catalogDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/catalog"
)

// EppItem is one entry of the protective-equipment catalog. Critical items
// are the ones whose failure blocks field work; the inspection UI surfaces
// them first.
type EppItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	IsCritical bool      `json:"is_critical"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToDataModel(i *EppItem) *catalogDatamodel.EppItem {
	return &catalogDatamodel.EppItem{
		ID:         i.ID,
		Name:       i.Name,
		Category:   i.Category,
		IsCritical: i.IsCritical,
		IsActive:   i.IsActive,
		CreatedAt:  i.CreatedAt,
	}
}

func FromDataModel(i *catalogDatamodel.EppItem) *EppItem {
	return &EppItem{
		ID:         i.ID,
		Name:       i.Name,
		Category:   i.Category,
		IsCritical: i.IsCritical,
		IsActive:   i.IsActive,
		CreatedAt:  i.CreatedAt,
	}
}

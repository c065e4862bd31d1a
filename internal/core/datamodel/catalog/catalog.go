package catalog

import "time"

// EppItem is the persistence model for the epp_catalog table. Archived items
// (is_active=false) stay referenced by historical inspections.
type EppItem struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Category   string    `gorm:"column:category;not null" json:"category"`
	IsCritical bool      `gorm:"column:is_critical;default:false" json:"is_critical"`
	IsActive   bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EppItem) TableName() string {
	return "epp_catalog"
}

package inspection

import (
	"time"

	catalogDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/catalog"
	userDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/user"
)

// Inspection is the persistence model for the inspections table. A voluntary
// inspection is born completed; an audit is born pending and completed later
// by the named technician.
type Inspection struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	TechnicianID string     `gorm:"column:technician_id;not null" json:"technician_id"`
	SupervisorID *string    `gorm:"column:supervisor_id" json:"supervisor_id,omitempty"`
	Type         string     `gorm:"column:type;not null" json:"type"`
	Status       string     `gorm:"column:status;not null" json:"status"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	Technician *userDatamodel.User `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Items      []InspectionItem    `gorm:"foreignKey:InspectionID" json:"inspection_items,omitempty"`
}

func (Inspection) TableName() string {
	return "inspections"
}

// InspectionItem rows are written once as a batch at completion time and
// never updated afterwards.
type InspectionItem struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	InspectionID string    `gorm:"column:inspection_id;not null" json:"inspection_id"`
	EppID        string    `gorm:"column:epp_id;not null" json:"epp_id"`
	Status       string    `gorm:"column:status;not null" json:"status"`
	PhotoURL     *string   `gorm:"column:photo_url" json:"photo_url,omitempty"`
	Observation  *string   `gorm:"column:observation" json:"observation,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Epp *catalogDatamodel.EppItem `gorm:"foreignKey:EppID" json:"epp,omitempty"`
}

func (InspectionItem) TableName() string {
	return "inspection_items"
}

package inspection

import (
	"time"

	"github.com/safetrack/epp-inspection/internal/catalog"
	inspectionDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/inspection"
	"github.com/safetrack/epp-inspection/internal/user"
)

// Inspection types. A voluntary inspection is logged complete by the
// technician in one shot; an audit is requested by a supervisor and sits
// pending until the technician completes it.
const (
	TypeVoluntary = "voluntary"
	TypeAudit     = "audit"
)

// Inspection statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Per-item verdicts. Anything that is not ok or missing counts as an issue
// in the KPI rollup. Damaged is accepted on the wire but no client sends it.
const (
	ItemStatusOK               = "ok"
	ItemStatusNeedsReplacement = "needs_replacement"
	ItemStatusMissing          = "missing"
	ItemStatusDamaged          = "damaged"
)

// Inspection is one equipment check, either voluntary or audit.
type Inspection struct {
	ID           string     `json:"id"`
	TechnicianID string     `json:"technician_id"`
	SupervisorID *string    `json:"supervisor_id,omitempty"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	Technician *user.User `json:"technician,omitempty"`
	Items      []Item     `json:"items,omitempty"`
}

// Item is one catalog entry's verdict inside an inspection, optionally with
// photo evidence and a free-text observation.
type Item struct {
	ID           string           `json:"id"`
	InspectionID string           `json:"inspection_id"`
	EppID        string           `json:"epp_id"`
	Status       string           `json:"status"`
	PhotoURL     *string          `json:"photo_url,omitempty"`
	Observation  *string          `json:"observation,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Epp          *catalog.EppItem `json:"epp,omitempty"`
}

func ToDataModel(i *Inspection) *inspectionDatamodel.Inspection {
	return &inspectionDatamodel.Inspection{
		ID:           i.ID,
		TechnicianID: i.TechnicianID,
		SupervisorID: i.SupervisorID,
		Type:         i.Type,
		Status:       i.Status,
		CreatedAt:    i.CreatedAt,
		CompletedAt:  i.CompletedAt,
	}
}

func ItemToDataModel(it *Item) *inspectionDatamodel.InspectionItem {
	return &inspectionDatamodel.InspectionItem{
		ID:           it.ID,
		InspectionID: it.InspectionID,
		EppID:        it.EppID,
		Status:       it.Status,
		PhotoURL:     it.PhotoURL,
		Observation:  it.Observation,
		CreatedAt:    it.CreatedAt,
	}
}

func FromDataModel(dm *inspectionDatamodel.Inspection) *Inspection {
	insp := &Inspection{
		ID:           dm.ID,
		TechnicianID: dm.TechnicianID,
		SupervisorID: dm.SupervisorID,
		Type:         dm.Type,
		Status:       dm.Status,
		CreatedAt:    dm.CreatedAt,
		CompletedAt:  dm.CompletedAt,
	}
	if dm.Technician != nil {
		insp.Technician = user.FromDataModel(dm.Technician)
	}
	for i := range dm.Items {
		insp.Items = append(insp.Items, *ItemFromDataModel(&dm.Items[i]))
	}
	return insp
}

func ItemFromDataModel(dm *inspectionDatamodel.InspectionItem) *Item {
	item := &Item{
		ID:           dm.ID,
		InspectionID: dm.InspectionID,
		EppID:        dm.EppID,
		Status:       dm.Status,
		PhotoURL:     dm.PhotoURL,
		Observation:  dm.Observation,
		CreatedAt:    dm.CreatedAt,
	}
	if dm.Epp != nil {
		item.Epp = catalog.FromDataModel(dm.Epp)
	}
	return item
}

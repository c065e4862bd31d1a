package inspection

import (
	"github.com/safetrack/epp-inspection/internal"
)

// ItemReportDTO is one catalog entry's verdict as submitted by a technician.
type ItemReportDTO struct {
	EppID       string  `json:"epp_id"`
	Status      string  `json:"status"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Observation *string `json:"observation,omitempty"`
}

func (d ItemReportDTO) Validate() error {
	if d.EppID == "" {
		return internal.NewValidationFieldError("epp_id", "epp_id is required", internal.ErrCodeValidationFailed)
	}
	switch d.Status {
	case ItemStatusOK, ItemStatusNeedsReplacement, ItemStatusMissing, ItemStatusDamaged:
		return nil
	default:
		return internal.NewValidationFieldError("status", "status must be ok, needs_replacement, missing or damaged", internal.ErrCodeValidationFailed)
	}
}

// SubmitVoluntaryDTO is the one-shot self-inspection payload.
type SubmitVoluntaryDTO struct {
	Items []ItemReportDTO `json:"items"`
}

func (d SubmitVoluntaryDTO) Validate() error {
	if len(d.Items) == 0 {
		return internal.NewValidationFieldError("items", "at least one item is required", internal.ErrCodeValidationFailed)
	}
	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RequestAuditDTO asks a technician to run an audited inspection.
type RequestAuditDTO struct {
	TechnicianID string `json:"technician_id"`
}

func (d RequestAuditDTO) Validate() error {
	if d.TechnicianID == "" {
		return internal.NewValidationFieldError("technician_id", "technician_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// CompleteAuditDTO carries the verdicts for a pending audit.
type CompleteAuditDTO struct {
	Items []ItemReportDTO `json:"items"`
}

func (d CompleteAuditDTO) Validate() error {
	if len(d.Items) == 0 {
		return internal.NewValidationFieldError("items", "at least one item is required", internal.ErrCodeValidationFailed)
	}
	for _, item := range d.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ListFilter narrows the supervisor's inspection list. Query matches the
// technician name or email, Date matches the creation day (YYYY-MM-DD).
type ListFilter struct {
	Query string
	Date  string
}

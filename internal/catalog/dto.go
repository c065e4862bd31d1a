package catalog

import (
	"github.com/safetrack/epp-inspection/internal"
)

// CreateItemDTO adds a new catalog entry. New items start active.
type CreateItemDTO struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	IsCritical bool   `json:"is_critical"`
}

func (d CreateItemDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Category == "" {
		return internal.NewValidationFieldError("category", "category is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateItemDTO edits name, category and criticality. Activation is toggled
// through the archive endpoints, not here.
type UpdateItemDTO struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	IsCritical bool   `json:"is_critical"`
}

func (d UpdateItemDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Category == "" {
		return internal.NewValidationFieldError("category", "category is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

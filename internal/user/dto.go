package user

import (
	"strings"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/auth"
)

// CreateUserDTO provisions a new user: identity account plus store profile.
type CreateUserDTO struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (d CreateUserDTO) Validate() error {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
	}
	if d.FullName == "" {
		return internal.NewValidationFieldError("full_name", "full_name is required", internal.ErrCodeValidationFailed)
	}
	if _, err := auth.ParseRole(d.Role); err != nil {
		return internal.NewValidationFieldError("role", "role must be admin, supervisor or technician", internal.ErrCodeInvalidRole)
	}
	return nil
}

// UpdateUserDTO edits an existing profile. Last write wins; there is no
// optimistic-lock check.
type UpdateUserDTO struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (d UpdateUserDTO) Validate() error {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
	}
	if _, err := auth.ParseRole(d.Role); err != nil {
		return internal.NewValidationFieldError("role", "role must be admin, supervisor or technician", internal.ErrCodeInvalidRole)
	}
	return nil
}

// ResetPasswordDTO is the admin-side password reset payload.
type ResetPasswordDTO struct {
	NewPassword string `json:"new_password"`
}

package user

import (
	"time"

	userDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/user"
)

// User is the domain view of a member of the workforce. The ID is the
// identity-provider account id.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	SupervisorID *string   `json:"supervisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProvisionResult is returned after a successful two-phase provisioning run.
// The temporary password is surfaced once so the admin can hand it over.
type ProvisionResult struct {
	UserID       string `json:"user_id"`
	TempPassword string `json:"temp_password"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		AvatarURL:    u.AvatarURL,
		SupervisorID: u.SupervisorID,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		AvatarURL:    u.AvatarURL,
		SupervisorID: u.SupervisorID,
		CreatedAt:    u.CreatedAt,
	}
}

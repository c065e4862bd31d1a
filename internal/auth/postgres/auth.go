package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/auth"
	userDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/user"
)

// AuthRepository resolves session users and roles from the users table.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	role, err := auth.ParseRole(row.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}

	return &auth.User{
		ID:        row.ID,
		Email:     row.Email,
		FullName:  row.FullName,
		Role:      role,
		AvatarURL: row.AvatarURL,
	}, nil
}

func (r *AuthRepository) RoleForUser(ctx context.Context, userID string) (auth.Role, error) {
	var role string
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Pluck("role", &role).Error
	if err != nil {
		return "", fmt.Errorf("role lookup: %w", err)
	}
	if role == "" {
		return "", internal.ErrUserNotFound
	}
	return auth.ParseRole(role)
}

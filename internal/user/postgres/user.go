package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal"
	userDatamodel "github.com/safetrack/epp-inspection/internal/core/datamodel/user"
	"github.com/safetrack/epp-inspection/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertByID writes the profile row keyed by the identity account id. An
// insert that trips the email unique index surfaces the raw driver error so
// the service can apply its role-update fallback.
func (r *UserRepository) UpsertByID(ctx context.Context, u *user.User) error {
	dm := user.ToDataModel(u)

	var existing userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", u.ID).First(&existing).Error
	switch {
	case err == nil:
		return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
			Where("id = ?", u.ID).
			Updates(map[string]interface{}{
				"email":     dm.Email,
				"full_name": dm.FullName,
				"role":      dm.Role,
			}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(dm).Error
	default:
		return err
	}
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	var dms []userDatamodel.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&dms).Error
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(dms))
	for i := range dms {
		users = append(users, user.FromDataModel(&dms[i]))
	}
	return users, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]*user.User, error) {
	var dms []userDatamodel.User
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("full_name ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(dms))
	for i := range dms {
		users = append(users, user.FromDataModel(&dms[i]))
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"email":     u.Email,
			"full_name": u.FullName,
			"role":      u.Role,
		}).Error
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, url string) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("avatar_url", url).Error
}

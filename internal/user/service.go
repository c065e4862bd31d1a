package user

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/auth"
	"github.com/safetrack/epp-inspection/internal/identity"
	"github.com/safetrack/epp-inspection/internal/storage"
)

// Repository is the store side of the user access layer.
type Repository interface {
	UpsertByID(ctx context.Context, u *User) error
	UpdateRole(ctx context.Context, id, role string) error
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByRole(ctx context.Context, role string) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	UpdateAvatarURL(ctx context.Context, id, url string) error
}

// Service implements the privileged admin operations (provisioning, password
// reset, user management) plus the self-service profile surface. Callers are
// gated by the admin role guard at the router; the service trusts the guard
// but still never reads roles from anything but the store.
type Service struct {
	provider identity.Provider
	repo     Repository
	objects  storage.ObjectStore
	logger   *slog.Logger
}

func NewService(provider identity.Provider, repo Repository, objects storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		repo:     repo,
		objects:  objects,
		logger:   logger,
	}
}

// Provision creates a user in two phases: identity account first, store
// profile second, with a compensating account delete if the second phase
// fails. Afterwards either both records exist or neither does.
func (s *Service) Provision(ctx context.Context, dto CreateUserDTO) (*ProvisionResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("provisioning validation failed", "error", err, "email", dto.Email)
		return nil, err
	}

	tempPassword, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return nil, internal.NewInternalError("could not generate temporary password", err)
	}

	// Phase 1: identity account. A duplicate email stops here; the store is
	// untouched.
	userID, err := s.provider.CreateUser(ctx, dto.Email, tempPassword, identity.Metadata{
		FullName: dto.FullName,
		Role:     dto.Role,
	})
	if err != nil {
		s.logger.Error("identity account creation failed", "error", err, "email", dto.Email)
		return nil, internal.NewIdentityProviderError("could not create identity account", err)
	}

	// Phase 2: store profile keyed by the provider-issued id.
	err = s.repo.UpsertByID(ctx, &User{
		ID:       userID,
		Email:    dto.Email,
		FullName: dto.FullName,
		Role:     dto.Role,
	})
	if err != nil {
		if internal.IsUniqueViolation(err) {
			// The email was already seeded into the store (e.g. by an earlier
			// setup run). Fall back to updating the role instead of failing.
			if updErr := s.repo.UpdateRole(ctx, userID, dto.Role); updErr == nil {
				s.logger.Info("provisioning fell back to role update", "user_id", userID, "email", dto.Email)
				return &ProvisionResult{UserID: userID, TempPassword: tempPassword}, nil
			}
		}

		// Compensate: remove the identity account so no orphan remains. A
		// failed compensation is logged only.
		if delErr := s.provider.DeleteUser(ctx, userID); delErr != nil {
			s.logger.Error("compensating identity delete failed; orphaned account",
				"user_id", userID, "error", delErr)
		}
		s.logger.Error("store profile write failed, provisioning rolled back",
			"user_id", userID, "email", dto.Email, "error", err)
		return nil, internal.NewProvisioningError("could not register user profile", err)
	}

	s.logger.Info("user provisioned", "user_id", userID, "email", dto.Email, "role", dto.Role)
	return &ProvisionResult{UserID: userID, TempPassword: tempPassword}, nil
}

// ResetPassword is the admin-side reset. The length policy runs before any
// provider call; no store mutation happens because the store holds no
// password material.
func (s *Service) ResetPassword(ctx context.Context, targetUserID, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return internal.ErrWeakPassword
	}

	if err := s.provider.UpdatePassword(ctx, targetUserID, newPassword); err != nil {
		s.logger.Error("password reset failed", "error", err, "target_user_id", targetUserID)
		return internal.NewIdentityProviderError("could not reset password", err)
	}

	s.logger.Info("password reset", "target_user_id", targetUserID)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewStoreError("could not list users", err)
	}
	return users, nil
}

// ListTechnicians feeds the supervisor's audit-request picker.
func (s *Service) ListTechnicians(ctx context.Context) ([]*User, error) {
	users, err := s.repo.ListByRole(ctx, string(auth.RoleTechnician))
	if err != nil {
		s.logger.Error("failed to list technicians", "error", err)
		return nil, internal.NewStoreError("could not list technicians", err)
	}
	return users, nil
}

// Update edits email, display name and role. Last write wins.
func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Email = dto.Email
	u.FullName = dto.FullName
	u.Role = dto.Role

	if err := s.repo.Update(ctx, u); err != nil {
		if internal.IsUniqueViolation(err) {
			return nil, internal.ErrUniqueViolation
		}
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewStoreError("could not update user", err)
	}
	return u, nil
}

// Delete removes the store profile and then the identity account. A failed
// account delete leaves an orphaned credential, which is logged only.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewStoreError("could not delete user", err)
	}

	if err := s.provider.DeleteUser(ctx, id); err != nil {
		s.logger.Error("identity account delete failed after profile delete", "error", err, "user_id", id)
	}
	return nil
}

// UpdateAvatar uploads the image and records its public URL on the profile.
func (s *Service) UpdateAvatar(ctx context.Context, userID, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.objects == nil {
		return "", internal.NewUploadError("object storage is not configured", nil)
	}

	objectName := storage.AvatarName(userID, filepath.Ext(fileName))
	if err := s.objects.Upload(ctx, objectName, reader, size, contentType); err != nil {
		s.logger.Error("avatar upload failed", "error", err, "user_id", userID)
		return "", internal.NewUploadError("could not upload avatar", err)
	}

	url := s.objects.PublicURL(objectName)
	if err := s.repo.UpdateAvatarURL(ctx, userID, url); err != nil {
		s.logger.Error("failed to record avatar url", "error", err, "user_id", userID)
		return "", internal.NewStoreError("could not update avatar", err)
	}

	return url, nil
}

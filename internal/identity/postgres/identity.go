package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal/core/datamodel/credential"
	"github.com/safetrack/epp-inspection/internal/identity"
)

var (
	ErrEmailTaken      = errors.New("email is already registered")
	ErrAccountNotFound = errors.New("account not found")
	ErrWrongPassword   = errors.New("wrong password")
)

// CredentialProvider is the Postgres-backed identity provider. It stands in
// for the hosted auth service: it issues account ids and keeps all password
// material in the credentials table.
type CredentialProvider struct {
	db         *gorm.DB
	bcryptCost int
}

func NewCredentialProvider(db *gorm.DB, bcryptCost int) identity.Provider {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &CredentialProvider{db: db, bcryptCost: bcryptCost}
}

func (p *CredentialProvider) CreateUser(ctx context.Context, email, password string, meta identity.Metadata) (string, error) {
	var count int64
	if err := p.db.WithContext(ctx).Model(&credential.Credential{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return "", fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	cred := &credential.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     meta.FullName,
		Role:         meta.Role,
	}
	if err := p.db.WithContext(ctx).Create(cred).Error; err != nil {
		return "", fmt.Errorf("create credential: %w", err)
	}
	return cred.ID, nil
}

func (p *CredentialProvider) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res := p.db.WithContext(ctx).Model(&credential.Credential{}).
		Where("id = ?", id).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (p *CredentialProvider) DeleteUser(ctx context.Context, id string) error {
	res := p.db.WithContext(ctx).Where("id = ?", id).Delete(&credential.Credential{})
	if res.Error != nil {
		return fmt.Errorf("delete credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (p *CredentialProvider) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	var cred credential.Credential
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("load credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrWrongPassword
	}
	return cred.ID, nil
}

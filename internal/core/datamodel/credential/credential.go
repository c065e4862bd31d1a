package credential

import "time"

// Credential is the identity provider's account record. The store's users
// table never holds password material; it lives here, keyed by the provider
// issued account id.
type Credential struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FullName     string    `gorm:"column:full_name" json:"full_name"`
	Role         string    `gorm:"column:role" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Credential) TableName() string {
	return "credentials"
}

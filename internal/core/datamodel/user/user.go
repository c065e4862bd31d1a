package user

import "time"

// User is the persistence model for the users table. The ID is issued by the
// identity provider and never generated by the store.
type User struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"column:full_name" json:"full_name"`
	Role         string    `gorm:"column:role;not null" json:"role"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	SupervisorID *string   `gorm:"column:supervisor_id" json:"supervisor_id,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of roles a user can hold. Roles are mutually
// exclusive and always read from the store, never from token claims.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleTechnician Role = "technician"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleSupervisor, RoleTechnician:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is the session-scoped view of the authenticated caller. The Role field
// is loaded from the users table on every request.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetSessionUser(ctx context.Context, userID string) (*User, error)
	ChangeOwnPassword(ctx context.Context, userID, newPassword string) error
}

// RepositoryAPI reads identity rows from the store for session resolution and
// role checks.
type RepositoryAPI interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	RoleForUser(ctx context.Context, id string) (Role, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

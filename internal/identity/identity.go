package identity

import "context"

// Metadata travels with the account at creation time, mirroring the
// display-name/role attributes the admin attaches when provisioning.
type Metadata struct {
	FullName string
	Role     string
}

// Provider is the identity collaborator: it owns account ids and password
// material. The rest of the system only sees provider-issued ids and opaque
// errors; it never reads or writes password hashes directly.
type Provider interface {
	// CreateUser registers an account with a temporary password and returns
	// the provider-issued id. Duplicate emails fail.
	CreateUser(ctx context.Context, email, password string, meta Metadata) (string, error)

	// UpdatePassword sets a new password for the account id (administrative
	// reset or self-service change).
	UpdatePassword(ctx context.Context, id, password string) error

	// DeleteUser removes the account. Used by admin user deletion and as the
	// compensation step when provisioning fails at the store phase.
	DeleteUser(ctx context.Context, id string) error

	// VerifyPassword checks credentials for sign-in and returns the account id.
	VerifyPassword(ctx context.Context, email, password string) (string, error)
}

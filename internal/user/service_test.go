package user_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/auth"
	"github.com/safetrack/epp-inspection/internal/identity"
	"github.com/safetrack/epp-inspection/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

type fakeProvider struct {
	createID     string
	createErr    error
	createCalls  int
	deleteCalls  []string
	deleteErr    error
	updatePwErr  error
	lastPassword string
}

func (f *fakeProvider) CreateUser(_ context.Context, _, password string, _ identity.Metadata) (string, error) {
	f.createCalls++
	f.lastPassword = password
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeProvider) UpdatePassword(_ context.Context, _, password string) error {
	f.lastPassword = password
	return f.updatePwErr
}

func (f *fakeProvider) DeleteUser(_ context.Context, id string) error {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeProvider) VerifyPassword(_ context.Context, _, _ string) (string, error) {
	return "", errors.New("not implemented")
}

type fakeRepo struct {
	upsertErr      error
	updateRoleErr  error
	upserted       []*user.User
	roleUpdates    map[string]string
	users          map[string]*user.User
	deleteErr      error
	deleted        []string
	avatarURLs     map[string]string
	avatarErr      error
	listErr        error
	listByRoleRole string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		roleUpdates: map[string]string{},
		users:       map[string]*user.User{},
		avatarURLs:  map[string]string{},
	}
}

func (f *fakeRepo) UpsertByID(_ context.Context, u *user.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, u)
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) UpdateRole(_ context.Context, id, role string) error {
	if f.updateRoleErr != nil {
		return f.updateRoleErr
	}
	f.roleUpdates[id] = role
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) List(_ context.Context) ([]*user.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepo) ListByRole(_ context.Context, role string) ([]*user.User, error) {
	f.listByRoleRole = role
	var out []*user.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.users[id]; !ok {
		return internal.ErrUserNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) UpdateAvatarURL(_ context.Context, id, url string) error {
	if f.avatarErr != nil {
		return f.avatarErr
	}
	f.avatarURLs[id] = url
	return nil
}

var _ = Describe("User Service", func() {
	var (
		provider *fakeProvider
		repo     *fakeRepo
		svc      *user.Service
		ctx      context.Context
	)

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		provider = &fakeProvider{createID: "acct-123"}
		repo = newFakeRepo()
		svc = user.NewService(provider, repo, nil, discard)
		ctx = context.Background()
	})

	Describe("Provision", func() {
		validDTO := user.CreateUserDTO{
			Email:    "tech@example.com",
			FullName: "Test Technician",
			Role:     "technician",
		}

		It("creates the identity account and the store profile", func() {
			result, err := svc.Provision(ctx, validDTO)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.UserID).To(Equal("acct-123"))
			Expect(result.TempPassword).NotTo(BeEmpty())
			Expect(len(result.TempPassword)).To(BeNumerically(">=", auth.MinPasswordLength))
			Expect(result.TempPassword).To(Equal(provider.lastPassword))

			Expect(repo.upserted).To(HaveLen(1))
			Expect(repo.upserted[0].ID).To(Equal("acct-123"))
			Expect(repo.upserted[0].Role).To(Equal("technician"))
			Expect(provider.deleteCalls).To(BeEmpty())
		})

		It("rejects an invalid role before touching the provider", func() {
			bad := validDTO
			bad.Role = "superuser"

			_, err := svc.Provision(ctx, bad)

			Expect(err).To(HaveOccurred())
			Expect(provider.createCalls).To(BeZero())
		})

		It("rejects a malformed email before touching the provider", func() {
			bad := validDTO
			bad.Email = "not-an-email"

			_, err := svc.Provision(ctx, bad)

			Expect(err).To(HaveOccurred())
			Expect(provider.createCalls).To(BeZero())
		})

		It("stops after an identity provider failure without writing the store", func() {
			provider.createErr = errors.New("upstream 500")

			_, err := svc.Provision(ctx, validDTO)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeIdentityProvider))
			Expect(repo.upserted).To(BeEmpty())
			Expect(provider.deleteCalls).To(BeEmpty())
		})

		It("compensates a store failure by deleting the identity account", func() {
			repo.upsertErr = errors.New("connection refused")

			_, err := svc.Provision(ctx, validDTO)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProvisioningFailed))
			Expect(provider.deleteCalls).To(Equal([]string{"acct-123"}))
		})

		It("still reports the provisioning failure when compensation itself fails", func() {
			repo.upsertErr = errors.New("connection refused")
			provider.deleteErr = errors.New("delete also failed")

			_, err := svc.Provision(ctx, validDTO)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProvisioningFailed))
		})

		It("falls back to a role update when the profile row already exists", func() {
			repo.upsertErr = errors.New("UNIQUE constraint failed: users.email")

			result, err := svc.Provision(ctx, validDTO)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.UserID).To(Equal("acct-123"))
			Expect(repo.roleUpdates).To(HaveKeyWithValue("acct-123", "technician"))
			Expect(provider.deleteCalls).To(BeEmpty())
		})

		It("compensates when both the upsert and the role fallback fail", func() {
			repo.upsertErr = errors.New("UNIQUE constraint failed: users.email")
			repo.updateRoleErr = errors.New("connection refused")

			_, err := svc.Provision(ctx, validDTO)

			Expect(err).To(HaveOccurred())
			Expect(provider.deleteCalls).To(Equal([]string{"acct-123"}))
		})
	})

	Describe("ResetPassword", func() {
		It("enforces the minimum length before any provider call", func() {
			err := svc.ResetPassword(ctx, "acct-123", "short")

			Expect(err).To(MatchError(internal.ErrWeakPassword))
			Expect(provider.lastPassword).To(BeEmpty())
		})

		It("delegates to the identity provider", func() {
			err := svc.ResetPassword(ctx, "acct-123", "new-secret")

			Expect(err).NotTo(HaveOccurred())
			Expect(provider.lastPassword).To(Equal("new-secret"))
		})

		It("wraps provider failures", func() {
			provider.updatePwErr = errors.New("upstream 500")

			err := svc.ResetPassword(ctx, "acct-123", "new-secret")

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeIdentityProvider))
		})
	})

	Describe("Delete", func() {
		It("removes the profile and then the identity account", func() {
			repo.users["acct-123"] = &user.User{ID: "acct-123", Role: "technician"}

			err := svc.Delete(ctx, "acct-123")

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.deleted).To(Equal([]string{"acct-123"}))
			Expect(provider.deleteCalls).To(Equal([]string{"acct-123"}))
		})

		It("still succeeds when the identity account delete fails", func() {
			repo.users["acct-123"] = &user.User{ID: "acct-123", Role: "technician"}
			provider.deleteErr = errors.New("upstream 500")

			err := svc.Delete(ctx, "acct-123")

			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the identity account when the profile delete fails", func() {
			repo.deleteErr = errors.New("connection refused")

			err := svc.Delete(ctx, "acct-123")

			Expect(err).To(HaveOccurred())
			Expect(provider.deleteCalls).To(BeEmpty())
		})
	})

	Describe("ListTechnicians", func() {
		It("filters by the technician role", func() {
			repo.users["t1"] = &user.User{ID: "t1", Role: "technician"}
			repo.users["s1"] = &user.User{ID: "s1", Role: "supervisor"}

			users, err := svc.ListTechnicians(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].ID).To(Equal("t1"))
			Expect(repo.listByRoleRole).To(Equal("technician"))
		})
	})
})

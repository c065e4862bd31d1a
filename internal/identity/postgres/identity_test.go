package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/safetrack/epp-inspection/internal/core/datamodel/credential"
	"github.com/safetrack/epp-inspection/internal/identity"
	identityPostgres "github.com/safetrack/epp-inspection/internal/identity/postgres"
)

func TestIdentityPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Identity Postgres Suite")
}

var _ = Describe("Credential Provider", func() {
	var (
		provider identity.Provider
		ctx      context.Context
	)

	meta := identity.Metadata{FullName: "María García", Role: "technician"}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&credential.Credential{})).To(Succeed())

		provider = identityPostgres.NewCredentialProvider(db, bcrypt.MinCost)
		ctx = context.Background()
	})

	Describe("CreateUser", func() {
		It("issues an account id and stores a hash, not the password", func() {
			id, err := provider.CreateUser(ctx, "maria@example.com", "secret1", meta)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())

			verified, err := provider.VerifyPassword(ctx, "maria@example.com", "secret1")
			Expect(err).NotTo(HaveOccurred())
			Expect(verified).To(Equal(id))
		})

		It("rejects a duplicate email", func() {
			_, err := provider.CreateUser(ctx, "maria@example.com", "secret1", meta)
			Expect(err).NotTo(HaveOccurred())

			_, err = provider.CreateUser(ctx, "maria@example.com", "another", meta)
			Expect(err).To(MatchError(identityPostgres.ErrEmailTaken))
		})
	})

	Describe("VerifyPassword", func() {
		It("rejects a wrong password", func() {
			_, err := provider.CreateUser(ctx, "maria@example.com", "secret1", meta)
			Expect(err).NotTo(HaveOccurred())

			_, err = provider.VerifyPassword(ctx, "maria@example.com", "wrong")
			Expect(err).To(MatchError(identityPostgres.ErrWrongPassword))
		})

		It("rejects an unknown email", func() {
			_, err := provider.VerifyPassword(ctx, "ghost@example.com", "secret1")
			Expect(err).To(MatchError(identityPostgres.ErrAccountNotFound))
		})
	})

	Describe("UpdatePassword", func() {
		It("invalidates the old password", func() {
			id, err := provider.CreateUser(ctx, "maria@example.com", "secret1", meta)
			Expect(err).NotTo(HaveOccurred())

			Expect(provider.UpdatePassword(ctx, id, "new-secret")).To(Succeed())

			_, err = provider.VerifyPassword(ctx, "maria@example.com", "secret1")
			Expect(err).To(MatchError(identityPostgres.ErrWrongPassword))

			verified, err := provider.VerifyPassword(ctx, "maria@example.com", "new-secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(verified).To(Equal(id))
		})

		It("reports a missing account", func() {
			err := provider.UpdatePassword(ctx, "ghost", "new-secret")
			Expect(err).To(MatchError(identityPostgres.ErrAccountNotFound))
		})
	})

	Describe("DeleteUser", func() {
		It("removes the account", func() {
			id, err := provider.CreateUser(ctx, "maria@example.com", "secret1", meta)
			Expect(err).NotTo(HaveOccurred())

			Expect(provider.DeleteUser(ctx, id)).To(Succeed())

			_, err = provider.VerifyPassword(ctx, "maria@example.com", "secret1")
			Expect(err).To(MatchError(identityPostgres.ErrAccountNotFound))
		})

		It("reports a missing account", func() {
			err := provider.DeleteUser(ctx, "ghost")
			Expect(err).To(MatchError(identityPostgres.ErrAccountNotFound))
		})
	})
})

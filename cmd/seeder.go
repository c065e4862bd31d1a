package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/catalog"
	catalogPostgres "github.com/safetrack/epp-inspection/internal/catalog/postgres"
	"github.com/safetrack/epp-inspection/internal/identity"
	identityPostgres "github.com/safetrack/epp-inspection/internal/identity/postgres"
	"github.com/safetrack/epp-inspection/internal/user"
	userPostgres "github.com/safetrack/epp-inspection/internal/user/postgres"
	"github.com/safetrack/epp-inspection/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog and optionally a bootstrap admin",
	Long: `Install the baseline protective-equipment catalog. When --admin-email
and --admin-password are set, also provision an administrator account so a
fresh deployment has someone who can log in.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(os.Getenv("APP_ENV"))
		lg := logger.L()

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm over db connection: %v", err)
		}

		ctx := context.Background()

		catalogService := catalog.NewService(catalogPostgres.NewCatalogRepository(gormDB), lg)
		if err := catalogService.Seed(ctx, catalog.DefaultSeed()); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		lg.Info("catalog seed complete")

		if adminEmail == "" {
			return
		}
		if adminPassword == "" {
			log.Fatal("--admin-password is required with --admin-email")
		}

		seedAdmin(ctx, gormDB, cfg, lg)
	},
}

func seedAdmin(ctx context.Context, gormDB *gorm.DB, cfg *internal.Config, lg *slog.Logger) {
	provider := identityPostgres.NewCredentialProvider(gormDB, cfg.Security.BCryptCost)
	userRepo := userPostgres.NewUserRepository(gormDB)

	if _, err := userRepo.GetByEmail(ctx, adminEmail); err == nil {
		lg.Info("admin account already exists", "email", adminEmail)
		return
	}

	userID, err := provider.CreateUser(ctx, adminEmail, adminPassword, identity.Metadata{
		FullName: adminName,
		Role:     "admin",
	})
	if err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	if err := userRepo.UpsertByID(ctx, &user.User{
		ID:       userID,
		Email:    adminEmail,
		FullName: adminName,
		Role:     "admin",
	}); err != nil {
		log.Fatalf("failed to write admin profile: %v", err)
	}

	lg.Info("admin account seeded", "email", adminEmail)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/auth"
	authPostgres "github.com/safetrack/epp-inspection/internal/auth/postgres"
	"github.com/safetrack/epp-inspection/internal/catalog"
	catalogPostgres "github.com/safetrack/epp-inspection/internal/catalog/postgres"
	identityPostgres "github.com/safetrack/epp-inspection/internal/identity/postgres"
	"github.com/safetrack/epp-inspection/internal/inspection"
	inspectionPostgres "github.com/safetrack/epp-inspection/internal/inspection/postgres"
	"github.com/safetrack/epp-inspection/internal/storage"
	"github.com/safetrack/epp-inspection/internal/transport/rest"
	"github.com/safetrack/epp-inspection/internal/user"
	userPostgres "github.com/safetrack/epp-inspection/internal/user/postgres"
	"github.com/safetrack/epp-inspection/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	var objects storage.ObjectStore
	if config.Storage.Endpoint != "" {
		objects, err = storage.NewMinioStore(config.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
	} else {
		lg.Warn("object storage not configured; photo and avatar uploads disabled")
	}

	// Identity and auth
	identityProvider := identityPostgres.NewCredentialProvider(gormDB, config.Security.BCryptCost)
	authRepo := authPostgres.NewAuthRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(identityProvider, authRepo, tokenGen)
	authHandler := auth.NewHandler(authService)
	rbac := auth.NewRBACAuthorization(authRepo, lg)

	// Domain services
	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(identityProvider, userRepo, objects, lg)
	userHandler := user.NewHandler(userService)

	catalogRepo := catalogPostgres.NewCatalogRepository(gormDB)
	catalogService := catalog.NewService(catalogRepo, lg)
	catalogHandler := catalog.NewHandler(catalogService)

	inspectionRepo := inspectionPostgres.NewInspectionRepository(gormDB)
	inspectionService := inspection.NewService(inspectionRepo, objects, lg)
	inspectionHandler := inspection.NewHandler(inspectionService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB,
		authHandler, rbac, userHandler, catalogHandler, inspectionHandler,
		config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// initDB opens the pgx stdlib connection shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

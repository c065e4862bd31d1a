package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/safetrack/epp-inspection/internal/auth"
	"github.com/safetrack/epp-inspection/internal/catalog"
	"github.com/safetrack/epp-inspection/internal/inspection"
	"github.com/safetrack/epp-inspection/internal/transport/middleware"
	"github.com/safetrack/epp-inspection/internal/transport/swagger"
	"github.com/safetrack/epp-inspection/internal/user"
)

// RegisterAllRoutes wires every handler under /api/v1 with the shared
// middleware stack. Role gates run after authentication, so the RBAC layer
// always sees a loaded session user.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	rbac *auth.RBACAuthorization,
	userHandler *user.Handler,
	catalogHandler *catalog.Handler,
	inspectionHandler *inspection.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Everything below requires a valid session.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Own profile
			pr.Get("/profile", userHandler.GetProfile)
			pr.Post("/profile/avatar", userHandler.UploadAvatar)
			pr.Post("/profile/password", authHandler.ChangePassword)

			// Catalog reads are open to every role; writes are admin only.
			pr.Route("/catalog", func(cr chi.Router) {
				cr.Get("/", catalogHandler.ListItems)
				cr.Get("/{id}", catalogHandler.GetItem)

				cr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", catalogHandler.CreateItem)
					ar.Put("/{id}", catalogHandler.UpdateItem)
					ar.Post("/{id}/archive", catalogHandler.ArchiveItem)
					ar.Post("/{id}/unarchive", catalogHandler.UnarchiveItem)
					ar.Delete("/{id}", catalogHandler.DeleteItem)
				})
			})

			pr.Route("/inspections", func(ir chi.Router) {
				// Technician surface
				ir.Group(func(tr chi.Router) {
					tr.Use(rbac.RequireTechnician())
					tr.Post("/", inspectionHandler.SubmitVoluntary)
					tr.Get("/mine", inspectionHandler.ListMine)
					tr.Get("/pending", inspectionHandler.ListPendingAudits)
					tr.Post("/{id}/complete", inspectionHandler.CompleteAudit)
					tr.Post("/photos", inspectionHandler.UploadPhoto)
				})

				// Supervisor surface (admins included)
				ir.Group(func(sr chi.Router) {
					sr.Use(rbac.RequireSupervisor())
					sr.Get("/", inspectionHandler.ListInspections)
					sr.Get("/kpi", inspectionHandler.KPI)
					sr.Post("/audits", inspectionHandler.RequestAudit)
					sr.Get("/{id}", inspectionHandler.GetInspection)
				})
			})

			// Supervisors pick audit targets from the technician roster.
			pr.Group(func(sr chi.Router) {
				sr.Use(rbac.RequireSupervisor())
				sr.Get("/technicians", userHandler.ListTechnicians)
			})

			// Admin user management
			pr.Route("/users", func(ur chi.Router) {
				ur.Use(rbac.RequireAdmin())
				ur.Post("/", userHandler.CreateUser)
				ur.Get("/", userHandler.ListUsers)
				ur.Get("/{id}", userHandler.GetUser)
				ur.Put("/{id}", userHandler.UpdateUser)
				ur.Delete("/{id}", userHandler.DeleteUser)
				ur.Post("/{id}/reset-password", userHandler.ResetPassword)
			})
		})
	})
}

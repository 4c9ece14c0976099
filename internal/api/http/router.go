package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Complaints        *handlers.ComplaintsHandler
	OfficerComplaints *handlers.OfficerComplaintsHandler
	SLA               *handlers.SLAHandler
	Admin             *handlers.AdminHandler
	AuthMiddleware    *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	citizen := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleCitizen))
	citizen.Post("/", cfg.Complaints.Submit)
	citizen.Get("/my", cfg.Complaints.ListMine)
	citizen.Get("/:id", cfg.Complaints.GetMine)
	citizen.Post("/:id/feedback", cfg.Complaints.SubmitFeedback)

	officer := app.Group("/officer/complaints", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOfficer))
	officer.Get("/", cfg.OfficerComplaints.Queue)
	officer.Get("/:id", cfg.OfficerComplaints.Get)
	officer.Patch("/:id/status", cfg.OfficerComplaints.ChangeStatus)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleDeptAdmin, domain.RoleSuperAdmin))
	admin.Get("/complaints", cfg.Admin.ListComplaints)
	admin.Get("/complaints/:id", cfg.Admin.GetComplaint)
	admin.Patch("/complaints/:id/status", cfg.Admin.ChangeStatus)
	admin.Patch("/complaints/:id/reclassify", cfg.Admin.Reclassify)

	admin.Get("/sla/tracker", cfg.SLA.Tracker)
	admin.Post("/sla/sweep", cfg.SLA.Sweep)
	admin.Get("/sla/rules", cfg.SLA.ListRules)
	admin.Put("/sla/rules", cfg.SLA.UpsertRule)

	admin.Get("/officers", cfg.Admin.ListOfficers)
	admin.Post("/officers", cfg.Admin.CreateOfficer)
	admin.Patch("/officers/:id/availability", cfg.Admin.SetOfficerAvailability)
	admin.Delete("/officers/:id", cfg.Admin.RemoveOfficer)

	super := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSuperAdmin))
	super.Post("/departments", cfg.Admin.CreateDepartment)
	super.Put("/category-mappings", cfg.Admin.SetCategoryMapping)
	super.Get("/users", cfg.Admin.ListAccounts)
	super.Patch("/users/:id/active", cfg.Admin.SetAccountActive)

	admin.Get("/departments", cfg.Admin.ListDepartments)
	admin.Get("/category-mappings", cfg.Admin.ListCategoryMappings)
	admin.Get("/audit-logs", cfg.Admin.ListAuditLogs)
	admin.Get("/dashboard", cfg.Admin.Dashboard)
}

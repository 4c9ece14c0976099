package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AdminHandler manages oversight endpoints.
type AdminHandler struct {
	admin     *service.AdminService
	intake    *service.IntakeService
	lifecycle *service.LifecycleService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, intake *service.IntakeService, lifecycle *service.LifecycleService) *AdminHandler {
	return &AdminHandler{admin: admin, intake: intake, lifecycle: lifecycle}
}

// CreateDepartment POST /admin/departments.
func (h *AdminHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	department, err := h.admin.CreateDepartment(c.UserContext(), service.CreateDepartmentInput{
		Name:            req.Name,
		Code:            req.Code,
		DefaultSLAHours: req.DefaultSLAHours,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": departmentResponse(department)})
}

// ListDepartments GET /admin/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.admin.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetCategoryMapping PUT /admin/category-mappings.
func (h *AdminHandler) SetCategoryMapping(c *fiber.Ctx) error {
	var req dto.SetCategoryMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	mapping, err := h.admin.SetCategoryMapping(c.UserContext(), req.Category, req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CategoryMappingResponse{
		Category:     mapping.Category,
		DepartmentID: mapping.DepartmentID,
	}})
}

// ListCategoryMappings GET /admin/category-mappings.
func (h *AdminHandler) ListCategoryMappings(c *fiber.Ctx) error {
	mappings, err := h.admin.ListCategoryMappings(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryMappingResponse, 0, len(mappings))
	for _, mapping := range mappings {
		items = append(items, dto.CategoryMappingResponse{
			Category:     mapping.Category,
			DepartmentID: mapping.DepartmentID,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateOfficer POST /admin/officers.
func (h *AdminHandler) CreateOfficer(c *fiber.Ctx) error {
	var req dto.CreateOfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	officer, err := h.admin.CreateOfficer(c.UserContext(), service.CreateOfficerInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Mobile:       req.Mobile,
		DepartmentID: req.DepartmentID,
		Zones:        req.Zones,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": officerResponse(officer)})
}

// ListOfficers GET /admin/officers?department_id=.
func (h *AdminHandler) ListOfficers(c *fiber.Ctx) error {
	departmentID := c.Query("department_id")
	if departmentID == "" {
		return apperrors.NewValidationError("department_id query parameter required", nil)
	}
	officers, err := h.admin.ListOfficers(c.UserContext(), departmentID)
	if err != nil {
		return err
	}
	items := make([]dto.OfficerResponse, 0, len(officers))
	for i := range officers {
		items = append(items, officerResponse(&officers[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetOfficerAvailability PATCH /admin/officers/:id/availability.
func (h *AdminHandler) SetOfficerAvailability(c *fiber.Ctx) error {
	var req dto.SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	officer, err := h.admin.SetOfficerAvailability(c.UserContext(), c.Params("id"), req.IsAvailable)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": officerResponse(officer)})
}

// RemoveOfficer DELETE /admin/officers/:id.
func (h *AdminHandler) RemoveOfficer(c *fiber.Ctx) error {
	if err := h.admin.RemoveOfficer(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListAccounts GET /admin/users?role=.
func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	var role *domain.AccountRole
	if raw := c.Query("role"); raw != "" {
		r := domain.AccountRole(raw)
		role = &r
	}
	accounts, err := h.admin.ListAccounts(c.UserContext(), role)
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, accountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetAccountActive PATCH /admin/users/:id/active.
func (h *AdminHandler) SetAccountActive(c *fiber.Ctx) error {
	var req dto.SetAccountActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.admin.SetAccountActive(c.UserContext(), c.Params("id"), req.IsActive); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListAuditLogs GET /admin/audit-logs.
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	records, err := h.admin.ListAuditLogs(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	items := make([]dto.AuditRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.AuditRecordResponse{
			ID:        records[i].ID,
			Action:    records[i].Action,
			ActorID:   records[i].ActorID,
			TargetID:  records[i].TargetID,
			Details:   records[i].Details,
			IPAddress: records[i].IPAddress,
			CreatedAt: records[i].CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.admin.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	byDept := make([]dto.DepartmentCountResponse, 0, len(stats.ByDepartment))
	for _, entry := range stats.ByDepartment {
		byDept = append(byDept, dto.DepartmentCountResponse{
			DepartmentID: entry.DepartmentID,
			Count:        entry.Count,
		})
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		ByStatus:      stats.ByStatus,
		ByDepartment:  byDept,
		BreachedCount: stats.BreachedCount,
		LowTrustCount: stats.LowTrustCount,
	}})
}

// ListComplaints GET /admin/complaints.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	filter := repository.ComplaintFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if dept := c.Query("department_id"); dept != "" {
		filter.DepartmentID = &dept
	}
	if zone := c.Query("zone"); zone != "" {
		filter.Zone = &zone
	}
	if statuses := parseStatuses(c.Query("status")); len(statuses) > 0 {
		filter.Statuses = statuses
	}
	complaints, err := h.intake.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetComplaint GET /admin/complaints/:id.
func (h *AdminHandler) GetComplaint(c *fiber.Ctx) error {
	complaint, err := h.intake.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.lifecycle.HistoryFor(c.UserContext(), complaint.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, history)})
}

// Reclassify PATCH /admin/complaints/:id/reclassify.
func (h *AdminHandler) Reclassify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReclassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.lifecycle.Reclassify(c.UserContext(), c.Params("id"), service.ReclassifyInput{
		NewDepartmentID: req.DepartmentID,
		NewPriority:     req.Priority,
		ActorID:         principal.Account.ID,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, nil)})
}

// ChangeStatus PATCH /admin/complaints/:id/status.
func (h *AdminHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.lifecycle.ChangeStatus(c.UserContext(), c.Params("id"), req.Status, principal.Account.ID, req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, nil)})
}

func departmentResponse(department *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:              department.ID,
		Name:            department.Name,
		Code:            department.Code,
		DefaultSLAHours: department.DefaultSLAHours,
		CreatedAt:       department.CreatedAt,
	}
}

func officerResponse(officer *domain.Officer) dto.OfficerResponse {
	return dto.OfficerResponse{
		ID:                 officer.ID,
		AccountID:          officer.AccountID,
		DepartmentID:       officer.DepartmentID,
		Mobile:             officer.Mobile,
		JurisdictionZones:  officer.JurisdictionZones,
		ActiveComplaints:   officer.ActiveComplaints,
		ResolvedComplaints: officer.ResolvedComplaints,
		IsAvailable:        officer.IsAvailable,
	}
}

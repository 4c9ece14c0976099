package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// OfficerComplaintsHandler manages the officer work queue.
type OfficerComplaintsHandler struct {
	intake    *service.IntakeService
	lifecycle *service.LifecycleService
}

// NewOfficerComplaintsHandler constructs handler.
func NewOfficerComplaintsHandler(intake *service.IntakeService, lifecycle *service.LifecycleService) *OfficerComplaintsHandler {
	return &OfficerComplaintsHandler{intake: intake, lifecycle: lifecycle}
}

// Queue GET /officer/complaints.
func (h *OfficerComplaintsHandler) Queue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Officer == nil {
		return apperrors.NewForbidden("officer profile required")
	}
	filter := repository.ComplaintFilter{
		AssignedOfficerID: &principal.Officer.ID,
		Limit:             c.QueryInt("limit", 50),
		Offset:            c.QueryInt("offset", 0),
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

// Get GET /officer/complaints/:id.
func (h *OfficerComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Officer == nil {
		return apperrors.NewForbidden("officer profile required")
	}
	complaint, err := h.intake.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if complaint.AssignedOfficerID == nil || *complaint.AssignedOfficerID != principal.Officer.ID {
		return apperrors.NewForbidden("complaint not assigned to you")
	}
	history, err := h.lifecycle.HistoryFor(c.UserContext(), complaint.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, history)})
}

// ChangeStatus PATCH /officer/complaints/:id/status.
func (h *OfficerComplaintsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Officer == nil {
		return apperrors.NewForbidden("officer profile required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.intake.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if complaint.AssignedOfficerID == nil || *complaint.AssignedOfficerID != principal.Officer.ID {
		return apperrors.NewForbidden("complaint not assigned to you")
	}

	updated, err := h.lifecycle.ChangeStatus(c.UserContext(), complaint.ID, req.Status, principal.Account.ID, req.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(updated, nil)})
}

func parseStatuses(raw string) []domain.ComplaintStatus {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var statuses []domain.ComplaintStatus
	for _, part := range strings.Split(raw, ",") {
		status := domain.ComplaintStatus(strings.TrimSpace(part))
		if status != "" {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

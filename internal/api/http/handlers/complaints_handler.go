package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// ComplaintsHandler manages citizen complaint endpoints.
type ComplaintsHandler struct {
	intake    *service.IntakeService
	lifecycle *service.LifecycleService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(intake *service.IntakeService, lifecycle *service.LifecycleService) *ComplaintsHandler {
	return &ComplaintsHandler{intake: intake, lifecycle: lifecycle}
}

// Submit POST /complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.intake.Submit(c.UserContext(), principal.Account.ID, service.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Zone:        req.Zone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": complaintDetail(complaint, nil)})
}

// ListMine GET /complaints/my.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	complaints, err := h.intake.MyComplaints(c.UserContext(), principal.Account.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetMine GET /complaints/:id.
func (h *ComplaintsHandler) GetMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	complaint, err := h.intake.GetForCitizen(c.UserContext(), principal.Account.ID, c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.lifecycle.HistoryFor(c.UserContext(), complaint.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint, history)})
}

// SubmitFeedback POST /complaints/:id/feedback.
func (h *ComplaintsHandler) SubmitFeedback(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.lifecycle.SubmitFeedback(c.UserContext(), c.Params("id"), principal.Account.ID, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": complaintDetail(complaint, nil)})
}

func complaintSummary(complaint *domain.Complaint) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:            complaint.ID,
		ReferenceKey:  complaint.ReferenceKey,
		Title:         complaint.Title,
		Zone:          complaint.Zone,
		Category:      complaint.Category,
		PriorityLevel: complaint.PriorityLevel,
		Status:        complaint.Status,
		Deadline:      complaint.Deadline,
		IsBreached:    complaint.IsBreached,
		CreatedAt:     complaint.CreatedAt,
	}
}

func complaintDetail(complaint *domain.Complaint, history []domain.HistoryEntry) dto.ComplaintDetailResponse {
	resp := dto.ComplaintDetailResponse{
		ID:                complaint.ID,
		ReferenceKey:      complaint.ReferenceKey,
		CitizenID:         complaint.CitizenID,
		Title:             complaint.Title,
		Description:       complaint.Description,
		Location:          complaint.Location,
		Zone:              complaint.Zone,
		Category:          complaint.Category,
		PriorityScore:     complaint.PriorityScore,
		PriorityLevel:     complaint.PriorityLevel,
		Confidence:        complaint.Confidence,
		DepartmentID:      complaint.DepartmentID,
		AssignedOfficerID: complaint.AssignedOfficerID,
		Status:            complaint.Status,
		Deadline:          complaint.Deadline,
		IsBreached:        complaint.IsBreached,
		CreatedAt:         complaint.CreatedAt,
		UpdatedAt:         complaint.UpdatedAt,
	}
	if complaint.Feedback != nil {
		resp.Feedback = &dto.FeedbackResponse{
			Rating:  complaint.Feedback.Rating,
			Comment: complaint.Feedback.Comment,
		}
	}
	for i := range history {
		resp.History = append(resp.History, dto.HistoryEntryResponse{
			ID:        history[i].ID,
			Action:    history[i].Action,
			ActorID:   history[i].ActorID,
			Remarks:   history[i].Remarks,
			CreatedAt: history[i].CreatedAt,
		})
	}
	return resp
}

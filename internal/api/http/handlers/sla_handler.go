package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/worker"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// SLAHandler exposes the tracker view, rule management and the manual sweep.
type SLAHandler struct {
	sla     *service.SLAService
	monitor *worker.SLAMonitor
}

// NewSLAHandler constructs handler.
func NewSLAHandler(sla *service.SLAService, monitor *worker.SLAMonitor) *SLAHandler {
	return &SLAHandler{sla: sla, monitor: monitor}
}

// Tracker GET /admin/sla/tracker.
func (h *SLAHandler) Tracker(c *fiber.Ctx) error {
	now := time.Now()
	var departmentID *string
	if dept := c.Query("department_id"); dept != "" {
		departmentID = &dept
	}
	report, err := h.sla.Tracker(c.UserContext(), now, departmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TrackerResponse{
		GeneratedAt:   now,
		BreachedCount: report.BreachedCount,
		AtRiskCount:   report.AtRiskCount,
		Breached:      trackerRows(report.Breached),
		AtRisk:        trackerRows(report.AtRisk),
		OnTrack:       trackerRows(report.OnTrack),
	}})
}

// Sweep POST /admin/sla/sweep.
func (h *SLAHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.monitor.Sweep(c.UserContext(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{
		BreachedCount: result.BreachedCount,
		AtRiskCount:   result.AtRiskCount,
		SkippedCount:  result.SkippedCount,
	}})
}

// UpsertRule PUT /admin/sla/rules.
func (h *SLAHandler) UpsertRule(c *fiber.Ctx) error {
	var req dto.UpsertSLARuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule := &domain.SLARule{
		Category:        req.Category,
		PriorityLevel:   req.PriorityLevel,
		ResolutionHours: req.ResolutionHours,
		EscalateTo:      req.EscalateTo,
		IsActive:        req.IsActive,
	}
	if err := h.sla.UpsertRule(c.UserContext(), rule); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaRuleResponse(rule)})
}

// ListRules GET /admin/sla/rules.
func (h *SLAHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.sla.ListRules(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SLARuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, slaRuleResponse(&rules[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func trackerRows(rows []service.TrackerRow) []dto.TrackerRowResponse {
	out := make([]dto.TrackerRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.TrackerRowResponse{
			ComplaintID:   row.ComplaintID,
			Title:         row.Title,
			DepartmentID:  row.DepartmentID,
			OfficerID:     row.OfficerID,
			PriorityLevel: row.PriorityLevel,
			Location:      row.Location,
			Deadline:      row.Deadline,
			HoursLeft:     row.HoursLeft,
			Band:          string(row.Band),
		})
	}
	return out
}

func slaRuleResponse(rule *domain.SLARule) dto.SLARuleResponse {
	return dto.SLARuleResponse{
		ID:              rule.ID,
		Category:        rule.Category,
		PriorityLevel:   rule.PriorityLevel,
		ResolutionHours: rule.ResolutionHours,
		EscalateTo:      rule.EscalateTo,
		IsActive:        rule.IsActive,
	}
}

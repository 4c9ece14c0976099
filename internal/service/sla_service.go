package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// SLABand classifies how much time a complaint has left.
type SLABand string

const (
	BandBreached SLABand = "Breached"
	BandAtRisk   SLABand = "AtRisk"
	BandOnTrack  SLABand = "OnTrack"
)

// TrackerRow is one complaint's SLA position, computed fresh per request.
type TrackerRow struct {
	ComplaintID   string
	Title         string
	DepartmentID  *string
	OfficerID     *string
	PriorityLevel domain.PriorityLevel
	Location      string
	Deadline      time.Time
	HoursLeft     float64
	Band          SLABand
}

// TrackerReport is the on-demand SLA view.
type TrackerReport struct {
	Breached      []TrackerRow
	AtRisk        []TrackerRow
	OnTrack       []TrackerRow
	BreachedCount int
	AtRiskCount   int
}

// SLAService owns the rule table and deadline arithmetic.
type SLAService struct {
	rules        repository.SLARuleRepository
	departments  repository.DepartmentRepository
	complaints   repository.ComplaintRepository
	atRiskWindow time.Duration
	logger       *zap.Logger
}

// SLADependencies bundles repositories.
type SLADependencies struct {
	RuleRepo       repository.SLARuleRepository
	DepartmentRepo repository.DepartmentRepository
	ComplaintRepo  repository.ComplaintRepository
}

// NewSLAService creates the service.
func NewSLAService(deps SLADependencies, atRiskWindow time.Duration, logger *zap.Logger) *SLAService {
	if atRiskWindow <= 0 {
		atRiskWindow = 24 * time.Hour
	}
	return &SLAService{
		rules:        deps.RuleRepo,
		departments:  deps.DepartmentRepo,
		complaints:   deps.ComplaintRepo,
		atRiskWindow: atRiskWindow,
		logger:       logger,
	}
}

// ResolutionHours resolves the allowed hours for (category, priority):
// exact rule first, then the department default, then the global constant.
func (s *SLAService) ResolutionHours(ctx context.Context, category domain.Category, priority domain.PriorityLevel, departmentID *string) int {
	rule, err := s.rules.Find(ctx, category, priority)
	if err == nil && rule.ResolutionHours > 0 {
		return rule.ResolutionHours
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("sla rule lookup failed; falling back", zap.Error(err))
	}

	if departmentID != nil {
		department, err := s.departments.GetByID(ctx, *departmentID)
		if err == nil && department.DefaultSLAHours > 0 {
			return department.DefaultSLAHours
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("department lookup failed; falling back", zap.Error(err))
		}
	}

	return domain.DefaultSLAHours
}

// Deadline computes the resolution deadline anchored at the creation
// instant. An unassigned complaint's clock is already running.
func (s *SLAService) Deadline(ctx context.Context, category domain.Category, priority domain.PriorityLevel, departmentID *string, createdAt time.Time) time.Time {
	hours := s.ResolutionHours(ctx, category, priority, departmentID)
	return createdAt.Add(time.Duration(hours) * time.Hour)
}

// Band classifies a deadline relative to now.
func (s *SLAService) Band(deadline, now time.Time) SLABand {
	left := deadline.Sub(now)
	switch {
	case left < 0:
		return BandBreached
	case left < s.atRiskWindow:
		return BandAtRisk
	default:
		return BandOnTrack
	}
}

// Tracker builds the real-time SLA report over all open complaints.
// departmentID scopes the view for department admins.
func (s *SLAService) Tracker(ctx context.Context, now time.Time, departmentID *string) (*TrackerReport, error) {
	open, err := s.complaints.ListOpen(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &TrackerReport{}
	for i := range open {
		complaint := &open[i]
		if departmentID != nil {
			if complaint.DepartmentID == nil || *complaint.DepartmentID != *departmentID {
				continue
			}
		}

		row := TrackerRow{
			ComplaintID:   complaint.ID,
			Title:         complaint.Title,
			DepartmentID:  complaint.DepartmentID,
			OfficerID:     complaint.AssignedOfficerID,
			PriorityLevel: complaint.PriorityLevel,
			Location:      complaint.Location,
			Deadline:      complaint.Deadline,
			HoursLeft:     complaint.Deadline.Sub(now).Hours(),
		}
		row.Band = s.Band(complaint.Deadline, now)

		switch row.Band {
		case BandBreached:
			report.Breached = append(report.Breached, row)
		case BandAtRisk:
			report.AtRisk = append(report.AtRisk, row)
		default:
			report.OnTrack = append(report.OnTrack, row)
		}
	}

	report.BreachedCount = len(report.Breached)
	report.AtRiskCount = len(report.AtRisk)
	return report, nil
}

// UpsertRule stores an SLA rule after validating the enums.
func (s *SLAService) UpsertRule(ctx context.Context, rule *domain.SLARule) error {
	if !domain.KnownCategory(rule.Category) {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": rule.Category})
	}
	if !domain.KnownPriority(rule.PriorityLevel) {
		return apperrors.NewValidationError("unknown priority level", map[string]any{"priority_level": rule.PriorityLevel})
	}
	if rule.ResolutionHours <= 0 {
		return apperrors.NewValidationError("resolution_hours must be positive", nil)
	}
	if rule.EscalateTo == "" {
		rule.EscalateTo = domain.EscalateDeptAdmin
	}
	return apperrors.MapError(s.rules.Upsert(ctx, rule))
}

// ListRules returns the active rule table.
func (s *SLAService) ListRules(ctx context.Context) ([]domain.SLARule, error) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rules, nil
}

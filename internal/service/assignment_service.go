package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/classifier"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// AssignmentResult is the routing outcome for a classified complaint.
type AssignmentResult struct {
	DepartmentID  *string
	OfficerID     *string
	InitialStatus domain.ComplaintStatus
	Deadline      time.Time
}

// AssignmentService routes classified complaints to departments and officers.
type AssignmentService struct {
	mappings   repository.CategoryMappingRepository
	officers   repository.OfficerRepository
	history    repository.ComplaintHistoryRepository
	sla        *SLAService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	MappingRepo repository.CategoryMappingRepository
	OfficerRepo repository.OfficerRepository
	HistoryRepo repository.ComplaintHistoryRepository
	SLA         *SLAService
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		mappings:   deps.MappingRepo,
		officers:   deps.OfficerRepo,
		history:    deps.HistoryRepo,
		sla:        deps.SLA,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Assign routes a classified complaint. Single pass, no retries: an
// unroutable complaint simply stays submitted, which is a valid outcome,
// not an error. The deadline is computed either way, anchored to the
// complaint's creation time.
func (s *AssignmentService) Assign(ctx context.Context, complaint *domain.Complaint, classification classifier.Result) (*AssignmentResult, error) {
	result := &AssignmentResult{InitialStatus: domain.ComplaintStatusSubmitted}

	departmentID, err := s.resolveDepartment(ctx, classification.Category)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	result.DepartmentID = departmentID

	if departmentID != nil {
		officer, err := s.pickOfficer(ctx, *departmentID, complaint.Zone)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if officer != nil {
			result.OfficerID = &officer.ID
			result.InitialStatus = domain.ComplaintStatusAssigned
		}
	}

	result.Deadline = s.sla.Deadline(ctx, classification.Category, classification.PriorityLevel, departmentID, complaint.CreatedAt)
	return result, nil
}

// Commit applies the routing outcome: the officer's load counter moves
// through the single atomic AdjustLoad path, then the routing history entry
// is appended and an assignment event emitted.
func (s *AssignmentService) Commit(ctx context.Context, complaint *domain.Complaint, result *AssignmentResult) error {
	complaint.DepartmentID = result.DepartmentID
	complaint.AssignedOfficerID = result.OfficerID
	complaint.Status = result.InitialStatus
	complaint.Deadline = result.Deadline

	if result.OfficerID != nil {
		if err := s.officers.AdjustLoad(ctx, *result.OfficerID, 1); err != nil {
			return apperrors.MapError(err)
		}
	}

	remarks := s.routingRemarks(result)
	if err := s.history.Append(ctx, &domain.HistoryEntry{
		ComplaintID: complaint.ID,
		Action:      string(domain.ActionRouting),
		Remarks:     remarks,
	}); err != nil {
		return apperrors.MapError(err)
	}

	if result.OfficerID != nil && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventComplaintAssigned,
			ComplaintID: complaint.ID,
			Timestamp:   time.Now(),
			Payload: events.ComplaintAssignedPayload{
				OfficerID:    *result.OfficerID,
				DepartmentID: result.DepartmentID,
				Zone:         complaint.Zone,
			},
		})
	}
	return nil
}

// resolveDepartment consults the explicit category mapping table. Unmapped
// categories, Other included, return nil so routing stops at submitted.
func (s *AssignmentService) resolveDepartment(ctx context.Context, category domain.Category) (*string, error) {
	if category == domain.CategoryOther {
		return nil, nil
	}
	departmentID, err := s.mappings.DepartmentFor(ctx, category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &departmentID, nil
}

// pickOfficer selects the least-loaded available officer covering the zone.
// The tie-break is a stable sort on (load, id) so the choice is
// deterministic for identical inputs.
func (s *AssignmentService) pickOfficer(ctx context.Context, departmentID, zone string) (*domain.Officer, error) {
	candidates, err := s.officers.FindEligible(ctx, departmentID, zone)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ActiveComplaints != candidates[j].ActiveComplaints {
			return candidates[i].ActiveComplaints < candidates[j].ActiveComplaints
		}
		return candidates[i].ID < candidates[j].ID
	})
	return &candidates[0], nil
}

func (s *AssignmentService) routingRemarks(result *AssignmentResult) string {
	switch {
	case result.DepartmentID == nil:
		return "No department match for category; awaiting manual routing"
	case result.OfficerID == nil:
		return "No officer available for zone; awaiting assignment"
	default:
		return fmt.Sprintf("Routed to department %s, officer %s", *result.DepartmentID, *result.OfficerID)
	}
}

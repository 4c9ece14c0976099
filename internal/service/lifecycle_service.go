package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// allowedTransitions is the complaint state machine. assigned is not a
// manual target: it is only entered by the assignment engine or officer
// zone sync, which keeps submitted <=> unassigned in lockstep.
var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintStatusSubmitted:  {domain.ComplaintStatusRejected},
	domain.ComplaintStatusAssigned:   {domain.ComplaintStatusInProgress, domain.ComplaintStatusRejected},
	domain.ComplaintStatusInProgress: {domain.ComplaintStatusResolved, domain.ComplaintStatusRejected},
	domain.ComplaintStatusResolved:   {},
	domain.ComplaintStatusRejected:   {},
}

func isValidTransition(current, next domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// LifecycleService owns the complaint status state machine and its side
// effects: history entries, officer counters and the trust-score mechanism.
type LifecycleService struct {
	complaints repository.ComplaintRepository
	history    repository.ComplaintHistoryRepository
	officers   repository.OfficerRepository
	accounts   repository.AccountRepository
	sla        *SLAService
	trust      config.TrustConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// LifecycleDependencies bundles collaborators.
type LifecycleDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	OfficerRepo   repository.OfficerRepository
	AccountRepo   repository.AccountRepository
	SLA           *SLAService
	Dispatcher    events.Dispatcher
}

// NewLifecycleService creates the service. Trust policy comes in as
// configuration, not literals.
func NewLifecycleService(deps LifecycleDependencies, trust config.TrustConfig, logger *zap.Logger) *LifecycleService {
	if trust.RejectionPenalty <= 0 {
		trust.RejectionPenalty = 10
	}
	if trust.BanThreshold <= 0 {
		trust.BanThreshold = 20
	}
	return &LifecycleService{
		complaints: deps.ComplaintRepo,
		history:    deps.HistoryRepo,
		officers:   deps.OfficerRepo,
		accounts:   deps.AccountRepo,
		sla:        deps.SLA,
		trust:      trust,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ChangeStatus runs one transition of the state machine. Invalid
// transitions and missing remarks are rejected before any mutation.
func (s *LifecycleService) ChangeStatus(ctx context.Context, complaintID string, newStatus domain.ComplaintStatus, actorID, remarks string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if !isValidTransition(complaint.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(newStatus))
	}
	if newStatus.IsTerminal() && strings.TrimSpace(remarks) == "" {
		return nil, apperrors.NewMissingRemarks(string(newStatus))
	}

	oldStatus := complaint.Status
	complaint.Status = newStatus
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	switch newStatus {
	case domain.ComplaintStatusResolved:
		if complaint.AssignedOfficerID != nil {
			if err := s.officers.RecordResolution(ctx, *complaint.AssignedOfficerID); err != nil {
				s.logger.Error("failed to record resolution stats", zap.Error(err), zap.String("officer_id", *complaint.AssignedOfficerID))
			}
		}
	case domain.ComplaintStatusRejected:
		if complaint.AssignedOfficerID != nil {
			if err := s.officers.AdjustLoad(ctx, *complaint.AssignedOfficerID, -1); err != nil {
				s.logger.Error("failed to release officer load", zap.Error(err), zap.String("officer_id", *complaint.AssignedOfficerID))
			}
		}
		s.applyRejectionPenalty(ctx, complaint)
	}

	if err := s.recordStatusChange(ctx, complaint.ID, actorID, oldStatus, newStatus, remarks); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:        events.EventStatusChanged,
		ComplaintID: complaint.ID,
		ActorID:     &actorID,
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Remarks:   remarks,
		},
	})
	return complaint, nil
}

// ReclassifyInput is the manual override for a wrong routing decision.
type ReclassifyInput struct {
	NewDepartmentID *string
	NewPriority     *domain.PriorityLevel
	ActorID         string
	Notes           string
}

// Reclassify corrects routing by hand. It never re-runs automatic
// matching: a department change releases the current officer and returns
// the complaint to the unassigned pool. A priority change recomputes the
// deadline, still anchored to the creation instant. Breached complaints
// never move down in priority.
func (s *LifecycleService) Reclassify(ctx context.Context, complaintID string, input ReclassifyInput) (*domain.Complaint, error) {
	if input.NewDepartmentID == nil && input.NewPriority == nil {
		return nil, apperrors.NewValidationError("nothing to reclassify", nil)
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if complaint.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), string(complaint.Status))
	}

	oldDepartment := complaint.DepartmentID
	oldPriority := complaint.PriorityLevel
	var changes []string

	if input.NewDepartmentID != nil && (complaint.DepartmentID == nil || *complaint.DepartmentID != *input.NewDepartmentID) {
		if complaint.AssignedOfficerID != nil {
			if err := s.officers.AdjustLoad(ctx, *complaint.AssignedOfficerID, -1); err != nil {
				return nil, apperrors.MapError(err)
			}
			complaint.AssignedOfficerID = nil
		}
		complaint.DepartmentID = input.NewDepartmentID
		complaint.Status = domain.ComplaintStatusSubmitted
		changes = append(changes, fmt.Sprintf("department -> %s", *input.NewDepartmentID))
	}

	if input.NewPriority != nil && *input.NewPriority != complaint.PriorityLevel {
		if !domain.KnownPriority(*input.NewPriority) {
			return nil, apperrors.NewValidationError("unknown priority level", map[string]any{"priority_level": *input.NewPriority})
		}
		if complaint.IsBreached && input.NewPriority.Rank() < complaint.PriorityLevel.Rank() {
			return nil, apperrors.NewValidationError("breached complaints cannot be downgraded", map[string]any{
				"current":   complaint.PriorityLevel,
				"requested": *input.NewPriority,
			})
		}
		complaint.PriorityLevel = *input.NewPriority
		complaint.Deadline = s.sla.Deadline(ctx, complaint.Category, complaint.PriorityLevel, complaint.DepartmentID, complaint.CreatedAt)
		changes = append(changes, fmt.Sprintf("priority %s -> %s", oldPriority, complaint.PriorityLevel))
	}

	if len(changes) == 0 {
		return complaint, nil
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	remarks := strings.Join(changes, "; ")
	if strings.TrimSpace(input.Notes) != "" {
		remarks += " | " + strings.TrimSpace(input.Notes)
	}
	if err := s.history.Append(ctx, &domain.HistoryEntry{
		ComplaintID: complaint.ID,
		Action:      string(domain.ActionReclassified),
		ActorID:     &input.ActorID,
		Remarks:     remarks,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintReclassified,
		ComplaintID: complaint.ID,
		ActorID:     &input.ActorID,
		Payload: events.ReclassifiedPayload{
			OldDepartmentID: oldDepartment,
			NewDepartmentID: complaint.DepartmentID,
			OldPriority:     oldPriority,
			NewPriority:     complaint.PriorityLevel,
			Deadline:        complaint.Deadline,
		},
	})
	return complaint, nil
}

// SubmitFeedback records a citizen's one-time rating of a resolved complaint.
func (s *LifecycleService) SubmitFeedback(ctx context.Context, complaintID, citizenID string, rating int, comment string) (*domain.Complaint, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", nil)
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if complaint.CitizenID != citizenID {
		return nil, apperrors.NewForbidden("not your complaint")
	}
	if complaint.Status != domain.ComplaintStatusResolved {
		return nil, apperrors.NewConflict("feedback is only accepted on resolved complaints", nil)
	}
	if complaint.Feedback != nil {
		return nil, apperrors.NewConflict("feedback already submitted", nil)
	}

	complaint.Feedback = &domain.Feedback{Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.history.Append(ctx, &domain.HistoryEntry{
		ComplaintID: complaint.ID,
		Action:      string(domain.ActionFeedback),
		ActorID:     &citizenID,
		Remarks:     fmt.Sprintf("rating %d/5", rating),
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// HistoryFor returns the complaint's audit trail.
func (s *LifecycleService) HistoryFor(ctx context.Context, complaintID string) ([]domain.HistoryEntry, error) {
	entries, err := s.history.ListByComplaint(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// applyRejectionPenalty decrements the citizen's trust score and
// deactivates the account when it falls below the configured threshold.
// Deactivation fires at most once because an already-inactive account is
// never re-banned.
func (s *LifecycleService) applyRejectionPenalty(ctx context.Context, complaint *domain.Complaint) {
	account, err := s.accounts.GetByID(ctx, complaint.CitizenID)
	if err != nil {
		s.logger.Error("trust penalty: account lookup failed", zap.Error(err), zap.String("citizen_id", complaint.CitizenID))
		return
	}

	oldScore := account.TrustScore
	newScore, err := s.accounts.ApplyTrustPenalty(ctx, account.ID, s.trust.RejectionPenalty)
	if err != nil {
		s.logger.Error("trust penalty: update failed", zap.Error(err), zap.String("citizen_id", account.ID))
		return
	}

	s.publish(ctx, events.Event{
		Type:        events.EventTrustScoreChanged,
		ComplaintID: complaint.ID,
		Payload: events.TrustScoreChangedPayload{
			AccountID: account.ID,
			OldScore:  oldScore,
			NewScore:  newScore,
		},
	})

	if newScore < s.trust.BanThreshold && account.IsActive {
		if err := s.accounts.SetActive(ctx, account.ID, false); err != nil {
			s.logger.Error("trust penalty: deactivation failed", zap.Error(err), zap.String("citizen_id", account.ID))
			return
		}
		s.logger.Warn("account deactivated for low trust score",
			zap.String("account_id", account.ID),
			zap.Int("trust_score", newScore))
		s.publish(ctx, events.Event{
			Type:        events.EventUserBanned,
			ComplaintID: complaint.ID,
			Payload: events.UserBannedPayload{
				AccountID:  account.ID,
				TrustScore: newScore,
			},
		})
	}
}

func (s *LifecycleService) recordStatusChange(ctx context.Context, complaintID, actorID string, oldStatus, newStatus domain.ComplaintStatus, remarks string) error {
	entry := &domain.HistoryEntry{
		ComplaintID: complaintID,
		Action:      fmt.Sprintf("%s: %s -> %s", domain.ActionStatusChange, oldStatus, newStatus),
		Remarks:     remarks,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	return apperrors.MapError(s.history.Append(ctx, entry))
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

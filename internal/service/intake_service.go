package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/classifier"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// Classifier is the boundary to the external AI classifier.
type Classifier interface {
	Classify(ctx context.Context, text string) classifier.Result
}

// IntakeService runs the synchronous complaint submission path:
// classify, persist, route, record.
type IntakeService struct {
	complaints repository.ComplaintRepository
	classifier Classifier
	assignment *AssignmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IntakeDependencies bundles collaborators.
type IntakeDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Classifier    Classifier
	Assignment    *AssignmentService
	Dispatcher    events.Dispatcher
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies, logger *zap.Logger) *IntakeService {
	return &IntakeService{
		complaints: deps.ComplaintRepo,
		classifier: deps.Classifier,
		assignment: deps.Assignment,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// SubmitInput is the citizen-facing submission payload.
type SubmitInput struct {
	Title       string
	Description string
	Location    string
	Zone        string
}

// Submit creates a complaint. Classification failure degrades to the safe
// default and is never surfaced to the citizen: they always get a created
// complaint, possibly unassigned.
func (s *IntakeService) Submit(ctx context.Context, citizenID string, input SubmitInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || strings.TrimSpace(input.Zone) == "" {
		return nil, apperrors.NewValidationError("title, description and zone are required", nil)
	}

	classification := s.classifier.Classify(ctx, title+" "+description)

	complaint := &domain.Complaint{
		ReferenceKey:  generateReferenceKey(),
		CitizenID:     citizenID,
		Title:         title,
		Description:   description,
		Location:      strings.TrimSpace(input.Location),
		Zone:          strings.TrimSpace(input.Zone),
		Category:      classification.Category,
		PriorityScore: classification.PriorityScore,
		PriorityLevel: classification.PriorityLevel,
		Confidence:    classification.Confidence,
		Status:        domain.ComplaintStatusSubmitted,
	}

	// Persist first so routing works against the stored creation instant.
	complaint.CreatedAt = time.Now()
	complaint.Deadline = complaint.CreatedAt.Add(domain.DefaultSLAHours * time.Hour)
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	result, err := s.assignment.Assign(ctx, complaint, classification)
	if err != nil {
		return nil, err
	}
	if err := s.assignment.Commit(ctx, complaint, result); err != nil {
		return nil, err
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventComplaintSubmitted,
			ComplaintID: complaint.ID,
			ActorID:     &citizenID,
			Timestamp:   time.Now(),
			Payload: events.ComplaintSubmittedPayload{
				CitizenID:     citizenID,
				Category:      complaint.Category,
				PriorityLevel: complaint.PriorityLevel,
				DepartmentID:  complaint.DepartmentID,
				Zone:          complaint.Zone,
				Deadline:      complaint.Deadline,
			},
		})
	}
	return complaint, nil
}

// MyComplaints lists a citizen's own complaints, newest first.
func (s *IntakeService) MyComplaints(ctx context.Context, citizenID string, limit, offset int) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		CitizenID: &citizenID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// GetForCitizen fetches a complaint ensuring ownership.
func (s *IntakeService) GetForCitizen(ctx context.Context, citizenID, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if complaint.CitizenID != citizenID {
		return nil, apperrors.NewForbidden("not your complaint")
	}
	return complaint, nil
}

// List returns complaints for staff views.
func (s *IntakeService) List(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// Get fetches a complaint by id for staff views.
func (s *IntakeService) Get(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

func generateReferenceKey() string {
	return "GRV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

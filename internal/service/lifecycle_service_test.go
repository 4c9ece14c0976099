package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type lifecycleFixture struct {
	service    *LifecycleService
	complaints *fakeComplaintRepo
	history    *fakeHistoryRepo
	officers   *fakeOfficerRepo
	accounts   *fakeAccountRepo
	dispatcher *recordingDispatcher
}

func newLifecycleFixture(t *testing.T, trust config.TrustConfig) *lifecycleFixture {
	t.Helper()
	complaints := newFakeComplaintRepo()
	history := &fakeHistoryRepo{}
	officers := newFakeOfficerRepo()
	accounts := newFakeAccountRepo()
	dispatcher := &recordingDispatcher{}
	sla := NewSLAService(SLADependencies{
		RuleRepo:       &fakeSLARuleRepo{},
		DepartmentRepo: newFakeDepartmentRepo(),
		ComplaintRepo:  complaints,
	}, 24*time.Hour, zap.NewNop())
	svc := NewLifecycleService(LifecycleDependencies{
		ComplaintRepo: complaints,
		HistoryRepo:   history,
		OfficerRepo:   officers,
		AccountRepo:   accounts,
		SLA:           sla,
		Dispatcher:    dispatcher,
	}, trust, zap.NewNop())
	return &lifecycleFixture{
		service:    svc,
		complaints: complaints,
		history:    history,
		officers:   officers,
		accounts:   accounts,
		dispatcher: dispatcher,
	}
}

func (fx *lifecycleFixture) seedComplaint(t *testing.T, status domain.ComplaintStatus, officerID *string) *domain.Complaint {
	t.Helper()
	account := &domain.Account{Name: "Asha", Email: "asha@example.com", Role: domain.RoleCitizen, TrustScore: 100, IsActive: true}
	require.NoError(t, fx.accounts.Create(context.Background(), account))

	complaint := &domain.Complaint{
		ReferenceKey:      "GRV-TEST01",
		CitizenID:         account.ID,
		Title:             "Streetlight out",
		Description:       "The streetlight near the park has been dark for a week",
		Zone:              "Ward-4",
		Category:          domain.CategoryElectricity,
		PriorityLevel:     domain.PriorityMedium,
		Status:            status,
		AssignedOfficerID: officerID,
		Deadline:          time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, fx.complaints.Create(context.Background(), complaint))
	return complaint
}

// TestChangeStatus_ValidPath walks assigned -> in_progress -> resolved and
// checks officer counters move with it.
func TestChangeStatus_ValidPath(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	officer := &domain.Officer{AccountID: "acc-1", DepartmentID: "dept-1", JurisdictionZones: []string{"Ward-4"}, ActiveComplaints: 1, IsAvailable: true}
	require.NoError(t, fx.officers.Create(context.Background(), officer))
	complaint := fx.seedComplaint(t, domain.ComplaintStatusAssigned, &officer.ID)

	updated, err := fx.service.ChangeStatus(context.Background(), complaint.ID, domain.ComplaintStatusInProgress, "actor-1", "started work")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusInProgress, updated.Status)

	updated, err = fx.service.ChangeStatus(context.Background(), complaint.ID, domain.ComplaintStatusResolved, "actor-1", "replaced bulb")
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, updated.Status)

	stored, err := fx.officers.GetByID(context.Background(), officer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ActiveComplaints)
	assert.Equal(t, 1, stored.ResolvedComplaints)

	changed := fx.dispatcher.byType(events.EventStatusChanged)
	assert.Len(t, changed, 2)
}

// TestChangeStatus_InvalidTransition rejects resolved directly from assigned.
func TestChangeStatus_InvalidTransition(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusAssigned, nil)

	_, err := fx.service.ChangeStatus(context.Background(), complaint.ID, domain.ComplaintStatusResolved, "actor-1", "done")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
}

// TestChangeStatus_TerminalIsFinal verifies terminal states accept nothing.
func TestChangeStatus_TerminalIsFinal(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	for _, status := range []domain.ComplaintStatus{domain.ComplaintStatusResolved, domain.ComplaintStatusRejected} {
		complaint := fx.seedComplaint(t, status, nil)
		_, err := fx.service.ChangeStatus(context.Background(), complaint.ID, domain.ComplaintStatusInProgress, "actor-1", "reopen")
		require.Error(t, err, "terminal status %s must not transition", status)
	}
}

// TestChangeStatus_MissingRemarks requires remarks for terminal transitions.
func TestChangeStatus_MissingRemarks(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusInProgress, nil)

	_, err := fx.service.ChangeStatus(context.Background(), complaint.ID, domain.ComplaintStatusResolved, "actor-1", "   ")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "MISSING_REMARKS", domainErr.Code)

	stored, err := fx.complaints.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusInProgress, stored.Status, "failed transition must not mutate")
}

// TestRejection_TrustPenaltyAndBan drops the citizen from 25 to 15 and
// expects a one-time deactivation.
func TestRejection_TrustPenaltyAndBan(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{RejectionPenalty: 10, BanThreshold: 20})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusSubmitted, nil)

	fx.accounts.accounts[complaint.CitizenID].TrustScore = 25

	_, err := fx.service.ChangeStatus(context.Background(), complaint.ID, domain.ComplaintStatusRejected, "admin-1", "duplicate report")
	require.NoError(t, err)

	stored, err := fx.accounts.GetByID(context.Background(), complaint.CitizenID)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.TrustScore)
	assert.False(t, stored.IsActive)

	assert.Len(t, fx.dispatcher.byType(events.EventTrustScoreChanged), 1)
	assert.Len(t, fx.dispatcher.byType(events.EventUserBanned), 1)
}

// TestRejection_NoDoubleBan verifies an already-inactive account is not
// banned twice when another complaint is rejected.
func TestRejection_NoDoubleBan(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{RejectionPenalty: 10, BanThreshold: 20})
	first := fx.seedComplaint(t, domain.ComplaintStatusSubmitted, nil)
	fx.accounts.accounts[first.CitizenID].TrustScore = 15
	fx.accounts.accounts[first.CitizenID].IsActive = false

	second := &domain.Complaint{
		ReferenceKey: "GRV-TEST02",
		CitizenID:    first.CitizenID,
		Title:        "Another complaint",
		Description:  "Second report from the same citizen",
		Zone:         "Ward-4",
		Category:     domain.CategoryWater,
		Status:       domain.ComplaintStatusSubmitted,
		Deadline:     time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, fx.complaints.Create(context.Background(), second))

	_, err := fx.service.ChangeStatus(context.Background(), second.ID, domain.ComplaintStatusRejected, "admin-1", "spam")
	require.NoError(t, err)

	assert.Len(t, fx.dispatcher.byType(events.EventUserBanned), 0)
	stored, err := fx.accounts.GetByID(context.Background(), first.CitizenID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TrustScore, "penalty still applies while banned")
}

// TestReclassify_DepartmentChange releases the officer and returns the
// complaint to the unassigned pool.
func TestReclassify_DepartmentChange(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	officer := &domain.Officer{AccountID: "acc-1", DepartmentID: "dept-1", JurisdictionZones: []string{"Ward-4"}, ActiveComplaints: 2, IsAvailable: true}
	require.NoError(t, fx.officers.Create(context.Background(), officer))
	complaint := fx.seedComplaint(t, domain.ComplaintStatusAssigned, &officer.ID)
	oldDept := "dept-1"
	complaint.DepartmentID = &oldDept
	require.NoError(t, fx.complaints.Update(context.Background(), complaint))

	newDept := "dept-2"
	updated, err := fx.service.Reclassify(context.Background(), complaint.ID, ReclassifyInput{
		NewDepartmentID: &newDept,
		ActorID:         "admin-1",
		Notes:           "misrouted",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ComplaintStatusSubmitted, updated.Status)
	assert.Nil(t, updated.AssignedOfficerID)
	require.NotNil(t, updated.DepartmentID)
	assert.Equal(t, newDept, *updated.DepartmentID)

	stored, err := fx.officers.GetByID(context.Background(), officer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ActiveComplaints)

	assert.Len(t, fx.history.byAction(domain.ActionReclassified), 1)
	assert.Len(t, fx.dispatcher.byType(events.EventComplaintReclassified), 1)
}

// TestReclassify_PriorityRecomputesDeadline keeps the deadline anchored to
// the original creation time.
func TestReclassify_PriorityRecomputesDeadline(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusAssigned, nil)

	priority := domain.PriorityHigh
	updated, err := fx.service.Reclassify(context.Background(), complaint.ID, ReclassifyInput{
		NewPriority: &priority,
		ActorID:     "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PriorityHigh, updated.PriorityLevel)
	expected := updated.CreatedAt.Add(time.Duration(domain.DefaultSLAHours) * time.Hour)
	assert.WithinDuration(t, expected, updated.Deadline, time.Second)
}

// TestReclassify_BreachedNeverDowngrades keeps Critical once breached.
func TestReclassify_BreachedNeverDowngrades(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusAssigned, nil)
	complaint.IsBreached = true
	complaint.PriorityLevel = domain.PriorityCritical
	require.NoError(t, fx.complaints.Update(context.Background(), complaint))

	priority := domain.PriorityLow
	_, err := fx.service.Reclassify(context.Background(), complaint.ID, ReclassifyInput{
		NewPriority: &priority,
		ActorID:     "admin-1",
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

// TestReclassify_TerminalRejected refuses to touch closed complaints.
func TestReclassify_TerminalRejected(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusResolved, nil)

	newDept := "dept-2"
	_, err := fx.service.Reclassify(context.Background(), complaint.ID, ReclassifyInput{
		NewDepartmentID: &newDept,
		ActorID:         "admin-1",
	})
	require.Error(t, err)
}

// TestSubmitFeedback covers the resolved-only, owner-only, once-only rules.
func TestSubmitFeedback(t *testing.T) {
	fx := newLifecycleFixture(t, config.TrustConfig{})
	complaint := fx.seedComplaint(t, domain.ComplaintStatusResolved, nil)

	_, err := fx.service.SubmitFeedback(context.Background(), complaint.ID, "someone-else", 4, "ok")
	require.Error(t, err, "non-owner feedback must be refused")

	_, err = fx.service.SubmitFeedback(context.Background(), complaint.ID, complaint.CitizenID, 6, "great")
	require.Error(t, err, "rating above 5 must be refused")

	updated, err := fx.service.SubmitFeedback(context.Background(), complaint.ID, complaint.CitizenID, 4, "fixed quickly")
	require.NoError(t, err)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, 4, updated.Feedback.Rating)

	_, err = fx.service.SubmitFeedback(context.Background(), complaint.ID, complaint.CitizenID, 5, "again")
	require.Error(t, err, "second feedback must be refused")

	open := fx.seedComplaint(t, domain.ComplaintStatusInProgress, nil)
	_, err = fx.service.SubmitFeedback(context.Background(), open.ID, open.CitizenID, 3, "too soon")
	require.Error(t, err, "feedback on unresolved complaint must be refused")
}

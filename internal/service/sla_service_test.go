package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
)

type slaFixture struct {
	service     *SLAService
	rules       *fakeSLARuleRepo
	departments *fakeDepartmentRepo
	complaints  *fakeComplaintRepo
}

func newSLAFixture(t *testing.T) *slaFixture {
	t.Helper()
	rules := &fakeSLARuleRepo{}
	departments := newFakeDepartmentRepo()
	complaints := newFakeComplaintRepo()
	svc := NewSLAService(SLADependencies{
		RuleRepo:       rules,
		DepartmentRepo: departments,
		ComplaintRepo:  complaints,
	}, 24*time.Hour, zap.NewNop())
	return &slaFixture{service: svc, rules: rules, departments: departments, complaints: complaints}
}

// TestResolutionHours_RuleFirst prefers the exact (category, priority) rule.
func TestResolutionHours_RuleFirst(t *testing.T) {
	fx := newSLAFixture(t)
	require.NoError(t, fx.rules.Upsert(context.Background(), &domain.SLARule{
		Category:        domain.CategoryFire,
		PriorityLevel:   domain.PriorityCritical,
		ResolutionHours: 6,
		EscalateTo:      domain.EscalateSuperAdmin,
		IsActive:        true,
	}))
	department := &domain.Department{Name: "Fire", Code: "FIRE", DefaultSLAHours: 12}
	require.NoError(t, fx.departments.Create(context.Background(), department))

	hours := fx.service.ResolutionHours(context.Background(), domain.CategoryFire, domain.PriorityCritical, &department.ID)
	assert.Equal(t, 6, hours)
}

// TestResolutionHours_DepartmentFallback uses the department default when
// no rule matches exactly.
func TestResolutionHours_DepartmentFallback(t *testing.T) {
	fx := newSLAFixture(t)
	department := &domain.Department{Name: "Water", Code: "WATER", DefaultSLAHours: 36}
	require.NoError(t, fx.departments.Create(context.Background(), department))

	hours := fx.service.ResolutionHours(context.Background(), domain.CategoryWater, domain.PriorityLow, &department.ID)
	assert.Equal(t, 36, hours)
}

// TestResolutionHours_GlobalFallback lands on the global default when
// neither a rule nor a department applies.
func TestResolutionHours_GlobalFallback(t *testing.T) {
	fx := newSLAFixture(t)
	hours := fx.service.ResolutionHours(context.Background(), domain.CategoryOther, domain.PriorityMedium, nil)
	assert.Equal(t, domain.DefaultSLAHours, hours)
}

// TestResolutionHours_InactiveRuleIgnored skips rules that are switched off.
func TestResolutionHours_InactiveRuleIgnored(t *testing.T) {
	fx := newSLAFixture(t)
	require.NoError(t, fx.rules.Upsert(context.Background(), &domain.SLARule{
		Category:        domain.CategoryWater,
		PriorityLevel:   domain.PriorityHigh,
		ResolutionHours: 6,
		EscalateTo:      domain.EscalateDeptAdmin,
		IsActive:        false,
	}))

	hours := fx.service.ResolutionHours(context.Background(), domain.CategoryWater, domain.PriorityHigh, nil)
	assert.Equal(t, domain.DefaultSLAHours, hours)
}

// TestBand covers the three bands around the at-risk window.
func TestBand(t *testing.T) {
	fx := newSLAFixture(t)
	now := time.Now()

	assert.Equal(t, BandBreached, fx.service.Band(now.Add(-time.Minute), now))
	assert.Equal(t, BandAtRisk, fx.service.Band(now.Add(2*time.Hour), now))
	assert.Equal(t, BandOnTrack, fx.service.Band(now.Add(30*time.Hour), now))
}

// TestTracker groups open complaints into bands and scopes by department.
func TestTracker(t *testing.T) {
	fx := newSLAFixture(t)
	now := time.Now()
	deptA := "dept-a"
	deptB := "dept-b"

	seed := func(id string, departmentID *string, deadline time.Time, status domain.ComplaintStatus) {
		complaint := &domain.Complaint{
			ID:           id,
			ReferenceKey: "GRV-" + id,
			CitizenID:    "cit-1",
			Title:        id,
			Description:  "d",
			Zone:         "Ward-1",
			Category:     domain.CategoryWater,
			DepartmentID: departmentID,
			Status:       status,
			Deadline:     deadline,
		}
		require.NoError(t, fx.complaints.Create(context.Background(), complaint))
	}

	seed("breached", &deptA, now.Add(-time.Hour), domain.ComplaintStatusAssigned)
	seed("at-risk", &deptA, now.Add(3*time.Hour), domain.ComplaintStatusInProgress)
	seed("on-track", &deptB, now.Add(48*time.Hour), domain.ComplaintStatusAssigned)
	seed("closed", &deptA, now.Add(-time.Hour), domain.ComplaintStatusResolved)

	report, err := fx.service.Tracker(context.Background(), now, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.BreachedCount)
	assert.Equal(t, 1, report.AtRiskCount)
	assert.Len(t, report.OnTrack, 1)

	scoped, err := fx.service.Tracker(context.Background(), now, &deptA)
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.BreachedCount)
	assert.Len(t, scoped.OnTrack, 0)
}

// TestUpsertRule_Validation rejects unknown enums and non-positive hours.
func TestUpsertRule_Validation(t *testing.T) {
	fx := newSLAFixture(t)

	err := fx.service.UpsertRule(context.Background(), &domain.SLARule{
		Category:        "Garbage",
		PriorityLevel:   domain.PriorityHigh,
		ResolutionHours: 10,
	})
	require.Error(t, err)

	err = fx.service.UpsertRule(context.Background(), &domain.SLARule{
		Category:        domain.CategoryWater,
		PriorityLevel:   domain.PriorityHigh,
		ResolutionHours: 0,
	})
	require.Error(t, err)

	err = fx.service.UpsertRule(context.Background(), &domain.SLARule{
		Category:        domain.CategoryWater,
		PriorityLevel:   domain.PriorityHigh,
		ResolutionHours: 10,
		EscalateTo:      domain.EscalateDeptAdmin,
		IsActive:        true,
	})
	require.NoError(t, err)
}

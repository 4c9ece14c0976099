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
)

type adminFixture struct {
	service     *AdminService
	accounts    *fakeAccountRepo
	officers    *fakeOfficerRepo
	departments *fakeDepartmentRepo
	mappings    *fakeMappingRepo
	complaints  *fakeComplaintRepo
	history     *fakeHistoryRepo
	dispatcher  *recordingDispatcher
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	officers := newFakeOfficerRepo()
	departments := newFakeDepartmentRepo()
	mappings := newFakeMappingRepo()
	complaints := newFakeComplaintRepo()
	history := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: 4}}
	svc := NewAdminService(cfg, AdminDependencies{
		AccountRepo:    accounts,
		OfficerRepo:    officers,
		DepartmentRepo: departments,
		MappingRepo:    mappings,
		ComplaintRepo:  complaints,
		HistoryRepo:    history,
		AuditLogRepo:   &fakeAuditLogRepo{},
		Dispatcher:     dispatcher,
	}, zap.NewNop())
	return &adminFixture{
		service:     svc,
		accounts:    accounts,
		officers:    officers,
		departments: departments,
		mappings:    mappings,
		complaints:  complaints,
		history:     history,
		dispatcher:  dispatcher,
	}
}

func (fx *adminFixture) seedDepartment(t *testing.T) *domain.Department {
	t.Helper()
	department := &domain.Department{Name: "Water Supply", Code: "WATER", DefaultSLAHours: 48}
	require.NoError(t, fx.departments.Create(context.Background(), department))
	return department
}

// TestCreateOfficer_SyncsPendingComplaints picks up complaints that arrived
// before anyone covered their zone.
func TestCreateOfficer_SyncsPendingComplaints(t *testing.T) {
	fx := newAdminFixture(t)
	department := fx.seedDepartment(t)

	waiting := &domain.Complaint{
		ReferenceKey: "GRV-WAIT01",
		CitizenID:    "cit-1",
		Title:        "Burst pipe",
		Description:  "Water flooding the street",
		Zone:         "Ward-5",
		Category:     domain.CategoryWater,
		DepartmentID: &department.ID,
		Status:       domain.ComplaintStatusSubmitted,
		Deadline:     time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, fx.complaints.Create(context.Background(), waiting))

	officer, err := fx.service.CreateOfficer(context.Background(), CreateOfficerInput{
		Name:         "Officer Rao",
		Email:        "rao@example.com",
		Password:     "password123",
		DepartmentID: department.ID,
		Zones:        []string{"Ward-5", "Ward-6"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, officer.ActiveComplaints)

	stored, err := fx.complaints.GetByID(context.Background(), waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusAssigned, stored.Status)
	require.NotNil(t, stored.AssignedOfficerID)
	assert.Equal(t, officer.ID, *stored.AssignedOfficerID)

	assert.Len(t, fx.history.byAction(domain.ActionRouting), 1)
	created := fx.dispatcher.byType(events.EventOfficerCreated)
	require.Len(t, created, 1)
	payload, ok := created[0].Payload.(events.OfficerCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, 1, payload.SyncedCount)

	account, err := fx.accounts.GetByID(context.Background(), officer.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOfficer, account.Role)
}

// TestCreateOfficer_Validation checks the required fields.
func TestCreateOfficer_Validation(t *testing.T) {
	fx := newAdminFixture(t)
	department := fx.seedDepartment(t)

	_, err := fx.service.CreateOfficer(context.Background(), CreateOfficerInput{
		Name: "Officer Rao", Email: "rao@example.com", Password: "password123", DepartmentID: department.ID,
	})
	require.Error(t, err, "no zones must be refused")

	_, err = fx.service.CreateOfficer(context.Background(), CreateOfficerInput{
		Name: "Officer Rao", Email: "rao@example.com", Password: "short", DepartmentID: department.ID, Zones: []string{"Ward-1"},
	})
	require.Error(t, err, "short password must be refused")

	_, err = fx.service.CreateOfficer(context.Background(), CreateOfficerInput{
		Name: "Officer Rao", Email: "rao@example.com", Password: "password123", DepartmentID: "missing", Zones: []string{"Ward-1"},
	})
	require.Error(t, err, "unknown department must be refused")
}

// TestRemoveOfficer_ReleasesComplaints returns held complaints to the pool
// and deactivates the login.
func TestRemoveOfficer_ReleasesComplaints(t *testing.T) {
	fx := newAdminFixture(t)
	department := fx.seedDepartment(t)

	officer, err := fx.service.CreateOfficer(context.Background(), CreateOfficerInput{
		Name:         "Officer Rao",
		Email:        "rao@example.com",
		Password:     "password123",
		DepartmentID: department.ID,
		Zones:        []string{"Ward-5"},
	})
	require.NoError(t, err)

	held := &domain.Complaint{
		ReferenceKey:      "GRV-HELD01",
		CitizenID:         "cit-1",
		Title:             "Leak",
		Description:       "Leaking main",
		Zone:              "Ward-5",
		Category:          domain.CategoryWater,
		DepartmentID:      &department.ID,
		AssignedOfficerID: &officer.ID,
		Status:            domain.ComplaintStatusInProgress,
		Deadline:          time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, fx.complaints.Create(context.Background(), held))

	require.NoError(t, fx.service.RemoveOfficer(context.Background(), officer.ID))

	stored, err := fx.complaints.GetByID(context.Background(), held.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusSubmitted, stored.Status)
	assert.Nil(t, stored.AssignedOfficerID)

	_, err = fx.officers.GetByID(context.Background(), officer.ID)
	require.Error(t, err)

	account, err := fx.accounts.GetByID(context.Background(), officer.AccountID)
	require.NoError(t, err)
	assert.False(t, account.IsActive)
}

// TestSetCategoryMapping validates category and department.
func TestSetCategoryMapping(t *testing.T) {
	fx := newAdminFixture(t)
	department := fx.seedDepartment(t)

	_, err := fx.service.SetCategoryMapping(context.Background(), domain.CategoryOther, department.ID)
	require.Error(t, err, "Other is not mappable")

	_, err = fx.service.SetCategoryMapping(context.Background(), domain.CategoryWater, "missing")
	require.Error(t, err)

	mapping, err := fx.service.SetCategoryMapping(context.Background(), domain.CategoryWater, department.ID)
	require.NoError(t, err)
	assert.Equal(t, department.ID, mapping.DepartmentID)
}

// TestDashboard aggregates status, department and trust counters.
func TestDashboard(t *testing.T) {
	fx := newAdminFixture(t)
	department := fx.seedDepartment(t)

	lowTrust := &domain.Account{Name: "X", Email: "x@example.com", Role: domain.RoleCitizen, TrustScore: 10, IsActive: false}
	require.NoError(t, fx.accounts.Create(context.Background(), lowTrust))

	breached := &domain.Complaint{
		ReferenceKey: "GRV-B1",
		CitizenID:    "cit-1",
		Title:        "t",
		Description:  "d",
		Zone:         "Ward-1",
		Category:     domain.CategoryWater,
		DepartmentID: &department.ID,
		Status:       domain.ComplaintStatusAssigned,
		IsBreached:   true,
		Deadline:     time.Now().Add(-time.Hour),
	}
	require.NoError(t, fx.complaints.Create(context.Background(), breached))

	stats, err := fx.service.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByStatus[domain.ComplaintStatusAssigned])
	assert.Equal(t, 1, stats.BreachedCount)
	assert.Equal(t, 1, stats.LowTrustCount)
	require.Len(t, stats.ByDepartment, 1)
	assert.Equal(t, 1, stats.ByDepartment[0].Count)
}

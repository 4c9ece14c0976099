package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// lowTrustThreshold marks accounts worth flagging on the dashboard.
const lowTrustThreshold = 40

// AdminService covers department, officer and oversight operations.
type AdminService struct {
	accounts    repository.AccountRepository
	officers    repository.OfficerRepository
	departments repository.DepartmentRepository
	mappings    repository.CategoryMappingRepository
	complaints  repository.ComplaintRepository
	history     repository.ComplaintHistoryRepository
	auditLogs   repository.AuditLogRepository
	dispatcher  events.Dispatcher
	bcryptCost  int
	logger      *zap.Logger
}

// AdminDependencies encapsulates repo requirements for admin service.
type AdminDependencies struct {
	AccountRepo    repository.AccountRepository
	OfficerRepo    repository.OfficerRepository
	DepartmentRepo repository.DepartmentRepository
	MappingRepo    repository.CategoryMappingRepository
	ComplaintRepo  repository.ComplaintRepository
	HistoryRepo    repository.ComplaintHistoryRepository
	AuditLogRepo   repository.AuditLogRepository
	Dispatcher     events.Dispatcher
}

// NewAdminService builds the service.
func NewAdminService(cfg config.Config, deps AdminDependencies, logger *zap.Logger) *AdminService {
	return &AdminService{
		accounts:    deps.AccountRepo,
		officers:    deps.OfficerRepo,
		departments: deps.DepartmentRepo,
		mappings:    deps.MappingRepo,
		complaints:  deps.ComplaintRepo,
		history:     deps.HistoryRepo,
		auditLogs:   deps.AuditLogRepo,
		dispatcher:  deps.Dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
	}
}

// CreateDepartmentInput carries department creation fields.
type CreateDepartmentInput struct {
	Name            string
	Code            string
	DefaultSLAHours int
}

// CreateDepartment registers a new department.
func (s *AdminService) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*domain.Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Name == "" || in.Code == "" {
		return nil, errorutil.NewValidationError("name and code are required", nil)
	}
	if in.DefaultSLAHours <= 0 {
		in.DefaultSLAHours = domain.DefaultSLAHours
	}
	department := &domain.Department{
		Name:            in.Name,
		Code:            in.Code,
		DefaultSLAHours: in.DefaultSLAHours,
	}
	if err := s.departments.Create(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// ListDepartments returns all departments.
func (s *AdminService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}

// SetCategoryMapping binds a complaint category to a department. The
// binding is explicit; no string matching against department names happens
// anywhere in the routing path.
func (s *AdminService) SetCategoryMapping(ctx context.Context, category domain.Category, departmentID string) (*domain.CategoryMapping, error) {
	if !domain.KnownCategory(category) || category == domain.CategoryOther {
		return nil, errorutil.NewValidationError("category is not mappable", map[string]any{"category": category})
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errorutil.NewNotFound("department", map[string]any{"id": departmentID})
		}
		return nil, err
	}
	mapping := &domain.CategoryMapping{Category: category, DepartmentID: departmentID}
	if err := s.mappings.Upsert(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// ListCategoryMappings returns the routing table.
func (s *AdminService) ListCategoryMappings(ctx context.Context) ([]domain.CategoryMapping, error) {
	return s.mappings.List(ctx)
}

// CreateOfficerInput carries officer provisioning fields.
type CreateOfficerInput struct {
	Name         string
	Email        string
	Password     string
	Mobile       string
	DepartmentID string
	Zones        []string
}

// CreateOfficer provisions an officer account plus profile, then sweeps up
// any complaints already waiting in the officer's department and zones.
func (s *AdminService) CreateOfficer(ctx context.Context, in CreateOfficerInput) (*domain.Officer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || len(in.Zones) == 0 {
		return nil, errorutil.NewValidationError("name, email and at least one zone are required", nil)
	}
	if len(in.Password) < 8 {
		return nil, errorutil.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.departments.GetByID(ctx, in.DepartmentID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errorutil.NewNotFound("department", map[string]any{"id": in.DepartmentID})
		}
		return nil, err
	}
	if _, err := s.accounts.GetByEmail(ctx, in.Email); err == nil {
		return nil, errorutil.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleOfficer,
		TrustScore:   initialTrustScore,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	officer := &domain.Officer{
		AccountID:         account.ID,
		DepartmentID:      in.DepartmentID,
		Mobile:            strings.TrimSpace(in.Mobile),
		JurisdictionZones: in.Zones,
		IsAvailable:       true,
	}
	if err := s.officers.Create(ctx, officer); err != nil {
		return nil, err
	}

	synced, err := s.syncPendingComplaints(ctx, officer)
	if err != nil {
		s.logger.Error("pending complaint sync failed",
			zap.Error(err), zap.String("officer_id", officer.ID))
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventOfficerCreated,
			Timestamp: time.Now(),
			Payload: events.OfficerCreatedPayload{
				OfficerID:    officer.ID,
				DepartmentID: officer.DepartmentID,
				Zones:        officer.JurisdictionZones,
				SyncedCount:  synced,
			},
		})
	}
	return officer, nil
}

// syncPendingComplaints assigns complaints that arrived before any officer
// covered their zone. Returns how many were picked up.
func (s *AdminService) syncPendingComplaints(ctx context.Context, officer *domain.Officer) (int, error) {
	ids, err := s.complaints.AssignPending(ctx, officer.DepartmentID, officer.ID, officer.JurisdictionZones)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.officers.AdjustLoad(ctx, officer.ID, len(ids)); err != nil {
		return 0, err
	}
	for _, id := range ids {
		entry := &domain.HistoryEntry{
			ComplaintID: id,
			Action:      string(domain.ActionRouting),
			Remarks:     fmt.Sprintf("Assigned to newly onboarded officer %s", officer.ID),
		}
		if err := s.history.Append(ctx, entry); err != nil {
			s.logger.Error("sync history append failed",
				zap.Error(err), zap.String("complaint_id", id))
		}
	}
	officer.ActiveComplaints += len(ids)
	return len(ids), nil
}

// RemoveOfficer deletes an officer profile. Complaints the officer held go
// back to the unassigned pool so routing can pick them up again.
func (s *AdminService) RemoveOfficer(ctx context.Context, officerID string) error {
	officer, err := s.officers.GetByID(ctx, officerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return errorutil.NewNotFound("officer", map[string]any{"id": officerID})
		}
		return err
	}

	released, err := s.complaints.ReleaseOfficer(ctx, officer.ID)
	if err != nil {
		return err
	}
	for _, id := range released {
		entry := &domain.HistoryEntry{
			ComplaintID: id,
			Action:      string(domain.ActionRouting),
			Remarks:     "Assigned officer removed; returned to assignment pool",
		}
		if err := s.history.Append(ctx, entry); err != nil {
			s.logger.Error("release history append failed",
				zap.Error(err), zap.String("complaint_id", id))
		}
	}

	if err := s.officers.Delete(ctx, officer.ID); err != nil {
		return err
	}
	return s.accounts.SetActive(ctx, officer.AccountID, false)
}

// ListOfficers returns officer profiles for a department.
func (s *AdminService) ListOfficers(ctx context.Context, departmentID string) ([]domain.Officer, error) {
	return s.officers.ListByDepartment(ctx, departmentID)
}

// SetOfficerAvailability toggles whether routing may pick the officer.
func (s *AdminService) SetOfficerAvailability(ctx context.Context, officerID string, available bool) (*domain.Officer, error) {
	officer, err := s.officers.GetByID(ctx, officerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errorutil.NewNotFound("officer", map[string]any{"id": officerID})
		}
		return nil, err
	}
	officer.IsAvailable = available
	if err := s.officers.Update(ctx, officer); err != nil {
		return nil, err
	}
	return officer, nil
}

// ListAccounts returns accounts, optionally filtered by role.
func (s *AdminService) ListAccounts(ctx context.Context, role *domain.AccountRole) ([]domain.Account, error) {
	return s.accounts.List(ctx, role)
}

// SetAccountActive suspends or reinstates an account.
func (s *AdminService) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		if err == pgx.ErrNoRows {
			return errorutil.NewNotFound("account", map[string]any{"id": accountID})
		}
		return err
	}
	return nil
}

// ListAuditLogs returns the most recent audit records.
func (s *AdminService) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	return s.auditLogs.ListRecent(ctx, limit)
}

// DashboardStats is the oversight summary.
type DashboardStats struct {
	ByStatus      map[domain.ComplaintStatus]int
	ByDepartment  []repository.DepartmentCount
	BreachedCount int
	LowTrustCount int
}

// Dashboard aggregates counters for the admin overview.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.complaints.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDept, err := s.complaints.CountByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	lowTrust, err := s.accounts.CountLowTrust(ctx, lowTrustThreshold)
	if err != nil {
		return nil, err
	}

	breached := 0
	open, err := s.complaints.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	for i := range open {
		if open[i].IsBreached {
			breached++
		}
	}

	return &DashboardStats{
		ByStatus:      byStatus,
		ByDepartment:  byDept,
		BreachedCount: breached,
		LowTrustCount: lowTrust,
	}, nil
}

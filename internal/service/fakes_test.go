package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/classifier"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// fakeComplaintRepo is an in-memory ComplaintRepository.
type fakeComplaintRepo struct {
	mu         sync.Mutex
	complaints map[string]*domain.Complaint
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{complaints: make(map[string]*domain.Complaint)}
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}
	complaint.UpdatedAt = complaint.CreatedAt
	clone := *complaint
	f.complaints[complaint.ID] = &clone
	return nil
}

func (f *fakeComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.complaints[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	complaint.UpdatedAt = time.Now()
	clone := *complaint
	f.complaints[complaint.ID] = &clone
	return nil
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	complaint, ok := f.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *complaint
	return &clone, nil
}

func (f *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Complaint
	for _, complaint := range f.complaints {
		if filter.CitizenID != nil && complaint.CitizenID != *filter.CitizenID {
			continue
		}
		if filter.AssignedOfficerID != nil {
			if complaint.AssignedOfficerID == nil || *complaint.AssignedOfficerID != *filter.AssignedOfficerID {
				continue
			}
		}
		if filter.DepartmentID != nil {
			if complaint.DepartmentID == nil || *complaint.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if filter.Zone != nil && complaint.Zone != *filter.Zone {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if complaint.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *complaint)
	}
	return out, nil
}

func (f *fakeComplaintRepo) ListOpen(_ context.Context) ([]domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Complaint
	for _, complaint := range f.complaints {
		if !complaint.Status.IsTerminal() {
			out = append(out, *complaint)
		}
	}
	return out, nil
}

func (f *fakeComplaintRepo) MarkBreached(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	complaint, ok := f.complaints[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if complaint.IsBreached || complaint.Status.IsTerminal() {
		return false, nil
	}
	complaint.IsBreached = true
	complaint.PriorityLevel = domain.PriorityCritical
	complaint.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeComplaintRepo) AssignPending(_ context.Context, departmentID, officerID string, zones []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	zoneSet := make(map[string]bool, len(zones))
	for _, zone := range zones {
		zoneSet[zone] = true
	}
	var ids []string
	for _, complaint := range f.complaints {
		if complaint.Status != domain.ComplaintStatusSubmitted || complaint.AssignedOfficerID != nil {
			continue
		}
		if complaint.DepartmentID == nil || *complaint.DepartmentID != departmentID || !zoneSet[complaint.Zone] {
			continue
		}
		officer := officerID
		complaint.AssignedOfficerID = &officer
		complaint.Status = domain.ComplaintStatusAssigned
		ids = append(ids, complaint.ID)
	}
	return ids, nil
}

func (f *fakeComplaintRepo) ReleaseOfficer(_ context.Context, officerID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, complaint := range f.complaints {
		if complaint.AssignedOfficerID == nil || *complaint.AssignedOfficerID != officerID || complaint.Status.IsTerminal() {
			continue
		}
		complaint.AssignedOfficerID = nil
		complaint.Status = domain.ComplaintStatusSubmitted
		ids = append(ids, complaint.ID)
	}
	return ids, nil
}

func (f *fakeComplaintRepo) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[domain.ComplaintStatus]int)
	for _, complaint := range f.complaints {
		out[complaint.Status]++
	}
	return out, nil
}

func (f *fakeComplaintRepo) CountByDepartment(_ context.Context) ([]repository.DepartmentCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, complaint := range f.complaints {
		if complaint.DepartmentID != nil {
			counts[*complaint.DepartmentID]++
		}
	}
	var out []repository.DepartmentCount
	for departmentID, count := range counts {
		id := departmentID
		out = append(out, repository.DepartmentCount{DepartmentID: &id, Count: count})
	}
	return out, nil
}

// fakeHistoryRepo is an in-memory ComplaintHistoryRepository.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (f *fakeHistoryRepo) Append(_ context.Context, entry *domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HistoryEntry
	for _, entry := range f.entries {
		if entry.ComplaintID == complaintID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) byAction(action domain.HistoryAction) []domain.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HistoryEntry
	for _, entry := range f.entries {
		if entry.Action == string(action) {
			out = append(out, entry)
		}
	}
	return out
}

// fakeOfficerRepo is an in-memory OfficerRepository.
type fakeOfficerRepo struct {
	mu       sync.Mutex
	officers map[string]*domain.Officer
}

func newFakeOfficerRepo() *fakeOfficerRepo {
	return &fakeOfficerRepo{officers: make(map[string]*domain.Officer)}
}

func (f *fakeOfficerRepo) Create(_ context.Context, officer *domain.Officer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if officer.ID == "" {
		officer.ID = uuid.NewString()
	}
	clone := *officer
	f.officers[officer.ID] = &clone
	return nil
}

func (f *fakeOfficerRepo) Update(_ context.Context, officer *domain.Officer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.officers[officer.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *officer
	f.officers[officer.ID] = &clone
	return nil
}

func (f *fakeOfficerRepo) GetByID(_ context.Context, id string) (*domain.Officer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	officer, ok := f.officers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *officer
	return &clone, nil
}

func (f *fakeOfficerRepo) GetByAccountID(_ context.Context, accountID string) (*domain.Officer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, officer := range f.officers {
		if officer.AccountID == accountID {
			clone := *officer
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeOfficerRepo) ListByDepartment(_ context.Context, departmentID string) ([]domain.Officer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Officer
	for _, officer := range f.officers {
		if officer.DepartmentID == departmentID {
			out = append(out, *officer)
		}
	}
	return out, nil
}

func (f *fakeOfficerRepo) FindEligible(_ context.Context, departmentID, zone string) ([]domain.Officer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Officer
	for _, officer := range f.officers {
		if officer.DepartmentID == departmentID && officer.IsAvailable && officer.CoversZone(zone) {
			out = append(out, *officer)
		}
	}
	return out, nil
}

func (f *fakeOfficerRepo) AdjustLoad(_ context.Context, officerID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	officer, ok := f.officers[officerID]
	if !ok {
		return pgx.ErrNoRows
	}
	officer.ActiveComplaints += delta
	if officer.ActiveComplaints < 0 {
		officer.ActiveComplaints = 0
	}
	return nil
}

func (f *fakeOfficerRepo) RecordResolution(_ context.Context, officerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	officer, ok := f.officers[officerID]
	if !ok {
		return pgx.ErrNoRows
	}
	if officer.ActiveComplaints > 0 {
		officer.ActiveComplaints--
	}
	officer.ResolvedComplaints++
	return nil
}

func (f *fakeOfficerRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.officers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.officers, id)
	return nil
}

// fakeAccountRepo is an in-memory AccountRepository.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = time.Now()
	clone := *account
	f.accounts[account.ID] = &clone
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *account
	return &clone, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) List(_ context.Context, role *domain.AccountRole) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, account := range f.accounts {
		if role != nil && account.Role != *role {
			continue
		}
		out = append(out, *account)
	}
	return out, nil
}

func (f *fakeAccountRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.LastLoginAt = &at
	return nil
}

func (f *fakeAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.IsActive = active
	return nil
}

func (f *fakeAccountRepo) ApplyTrustPenalty(_ context.Context, id string, penalty int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	account.TrustScore -= penalty
	if account.TrustScore < 0 {
		account.TrustScore = 0
	}
	return account.TrustScore, nil
}

func (f *fakeAccountRepo) CountLowTrust(_ context.Context, threshold int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, account := range f.accounts {
		if account.TrustScore < threshold {
			count++
		}
	}
	return count, nil
}

// fakeDepartmentRepo is an in-memory DepartmentRepository.
type fakeDepartmentRepo struct {
	mu          sync.Mutex
	departments map[string]*domain.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: make(map[string]*domain.Department)}
}

func (f *fakeDepartmentRepo) Create(_ context.Context, department *domain.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	clone := *department
	f.departments[department.ID] = &clone
	return nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	department, ok := f.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *department
	return &clone, nil
}

func (f *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Department
	for _, department := range f.departments {
		out = append(out, *department)
	}
	return out, nil
}

// fakeMappingRepo is an in-memory CategoryMappingRepository.
type fakeMappingRepo struct {
	mu       sync.Mutex
	mappings map[domain.Category]string
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{mappings: make(map[domain.Category]string)}
}

func (f *fakeMappingRepo) Upsert(_ context.Context, mapping *domain.CategoryMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings[mapping.Category] = mapping.DepartmentID
	return nil
}

func (f *fakeMappingRepo) DepartmentFor(_ context.Context, category domain.Category) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	departmentID, ok := f.mappings[category]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return departmentID, nil
}

func (f *fakeMappingRepo) List(_ context.Context) ([]domain.CategoryMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CategoryMapping
	for category, departmentID := range f.mappings {
		out = append(out, domain.CategoryMapping{Category: category, DepartmentID: departmentID})
	}
	return out, nil
}

// fakeSLARuleRepo is an in-memory SLARuleRepository.
type fakeSLARuleRepo struct {
	mu    sync.Mutex
	rules []domain.SLARule
}

func (f *fakeSLARuleRepo) Upsert(_ context.Context, rule *domain.SLARule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rules {
		if f.rules[i].Category == rule.Category && f.rules[i].PriorityLevel == rule.PriorityLevel {
			f.rules[i] = *rule
			return nil
		}
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeSLARuleRepo) Find(_ context.Context, category domain.Category, priority domain.PriorityLevel) (*domain.SLARule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rules {
		if f.rules[i].Category == category && f.rules[i].PriorityLevel == priority && f.rules[i].IsActive {
			clone := f.rules[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSLARuleRepo) ListActive(_ context.Context) ([]domain.SLARule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SLARule
	for i := range f.rules {
		if f.rules[i].IsActive {
			out = append(out, f.rules[i])
		}
	}
	return out, nil
}

// fakeAuditLogRepo is an in-memory AuditLogRepository.
type fakeAuditLogRepo struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (f *fakeAuditLogRepo) Create(_ context.Context, record *domain.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAuditLogRepo) ListRecent(_ context.Context, limit int) ([]domain.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 || limit > len(f.records) {
		limit = len(f.records)
	}
	out := make([]domain.AuditRecord, limit)
	copy(out, f.records[len(f.records)-limit:])
	return out, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// stubClassifier returns a fixed result, or the safe default when failing.
type stubClassifier struct {
	result  classifier.Result
	failing bool
}

func (s *stubClassifier) Classify(_ context.Context, _ string) classifier.Result {
	if s.failing {
		return classifier.SafeDefault()
	}
	return s.result
}

package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name            string `json:"name"`
	Code            string `json:"code"`
	DefaultSLAHours int    `json:"default_sla_hours"`
}

// DepartmentResponse response.
type DepartmentResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Code            string    `json:"code"`
	DefaultSLAHours int       `json:"default_sla_hours"`
	CreatedAt       time.Time `json:"created_at"`
}

// SetCategoryMappingRequest payload.
type SetCategoryMappingRequest struct {
	Category     domain.Category `json:"category"`
	DepartmentID string          `json:"department_id"`
}

// CategoryMappingResponse response.
type CategoryMappingResponse struct {
	Category     domain.Category `json:"category"`
	DepartmentID string          `json:"department_id"`
}

// CreateOfficerRequest payload.
type CreateOfficerRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Mobile       string   `json:"mobile"`
	DepartmentID string   `json:"department_id"`
	Zones        []string `json:"zones"`
}

// OfficerResponse response.
type OfficerResponse struct {
	ID                 string   `json:"id"`
	AccountID          string   `json:"account_id"`
	DepartmentID       string   `json:"department_id"`
	Mobile             string   `json:"mobile"`
	JurisdictionZones  []string `json:"jurisdiction_zones"`
	ActiveComplaints   int      `json:"active_complaints"`
	ResolvedComplaints int      `json:"resolved_complaints"`
	IsAvailable        bool     `json:"is_available"`
}

// SetAvailabilityRequest payload.
type SetAvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// SetAccountActiveRequest payload.
type SetAccountActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// AuditRecordResponse response.
type AuditRecordResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	ActorID   *string   `json:"actor_id"`
	TargetID  *string   `json:"target_id"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardResponse is the oversight summary.
type DashboardResponse struct {
	ByStatus      map[domain.ComplaintStatus]int `json:"by_status"`
	ByDepartment  []DepartmentCountResponse      `json:"by_department"`
	BreachedCount int                            `json:"breached_count"`
	LowTrustCount int                            `json:"low_trust_count"`
}

// DepartmentCountResponse is one department's complaint tally.
type DepartmentCountResponse struct {
	DepartmentID *string `json:"department_id"`
	Count        int     `json:"count"`
}

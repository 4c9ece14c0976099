package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Zone        string `json:"zone"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status  domain.ComplaintStatus `json:"status"`
	Remarks string                 `json:"remarks"`
}

// ReclassifyRequest payload.
type ReclassifyRequest struct {
	DepartmentID *string               `json:"department_id"`
	Priority     *domain.PriorityLevel `json:"priority"`
	Notes        string                `json:"notes"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ComplaintSummary response.
type ComplaintSummary struct {
	ID            string                 `json:"id"`
	ReferenceKey  string                 `json:"reference_key"`
	Title         string                 `json:"title"`
	Zone          string                 `json:"zone"`
	Category      domain.Category        `json:"category"`
	PriorityLevel domain.PriorityLevel   `json:"priority_level"`
	Status        domain.ComplaintStatus `json:"status"`
	Deadline      time.Time              `json:"deadline"`
	IsBreached    bool                   `json:"is_breached"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ComplaintDetailResponse provides full complaint info.
type ComplaintDetailResponse struct {
	ID                string                 `json:"id"`
	ReferenceKey      string                 `json:"reference_key"`
	CitizenID         string                 `json:"citizen_id"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Location          string                 `json:"location"`
	Zone              string                 `json:"zone"`
	Category          domain.Category        `json:"category"`
	PriorityScore     int                    `json:"priority_score"`
	PriorityLevel     domain.PriorityLevel   `json:"priority_level"`
	Confidence        float64                `json:"confidence"`
	DepartmentID      *string                `json:"department_id"`
	AssignedOfficerID *string                `json:"assigned_officer_id"`
	Status            domain.ComplaintStatus `json:"status"`
	Deadline          time.Time              `json:"deadline"`
	IsBreached        bool                   `json:"is_breached"`
	Feedback          *FeedbackResponse      `json:"feedback,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	History           []HistoryEntryResponse `json:"history,omitempty"`
}

// FeedbackResponse response.
type FeedbackResponse struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HistoryEntryResponse represents one audit-trail line.
type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	ActorID   *string   `json:"actor_id"`
	Remarks   string    `json:"remarks"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackerRowResponse is one line of the SLA tracker.
type TrackerRowResponse struct {
	ComplaintID   string               `json:"complaint_id"`
	Title         string               `json:"title"`
	DepartmentID  *string              `json:"department_id"`
	OfficerID     *string              `json:"officer_id"`
	PriorityLevel domain.PriorityLevel `json:"priority_level"`
	Location      string               `json:"location"`
	Deadline      time.Time            `json:"deadline"`
	HoursLeft     float64              `json:"hours_left"`
	Band          string               `json:"band"`
}

// TrackerResponse is the full SLA tracker report.
type TrackerResponse struct {
	GeneratedAt   time.Time            `json:"generated_at"`
	BreachedCount int                  `json:"breached_count"`
	AtRiskCount   int                  `json:"at_risk_count"`
	Breached      []TrackerRowResponse `json:"breached"`
	AtRisk        []TrackerRowResponse `json:"at_risk"`
	OnTrack       []TrackerRowResponse `json:"on_track"`
}

// SweepResponse reports a manual sweep run.
type SweepResponse struct {
	BreachedCount int `json:"breached_count"`
	AtRiskCount   int `json:"at_risk_count"`
	SkippedCount  int `json:"skipped_count"`
}

// UpsertSLARuleRequest payload.
type UpsertSLARuleRequest struct {
	Category        domain.Category       `json:"category"`
	PriorityLevel   domain.PriorityLevel  `json:"priority_level"`
	ResolutionHours int                   `json:"resolution_hours"`
	EscalateTo      domain.EscalationTier `json:"escalate_to"`
	IsActive        bool                  `json:"is_active"`
}

// SLARuleResponse response.
type SLARuleResponse struct {
	ID              string                `json:"id"`
	Category        domain.Category       `json:"category"`
	PriorityLevel   domain.PriorityLevel  `json:"priority_level"`
	ResolutionHours int                   `json:"resolution_hours"`
	EscalateTo      domain.EscalationTier `json:"escalate_to"`
	IsActive        bool                  `json:"is_active"`
}

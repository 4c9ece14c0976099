package events

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted    EventType = "complaint_submitted"
	EventComplaintAssigned     EventType = "complaint_assigned"
	EventStatusChanged         EventType = "complaint_status_changed"
	EventComplaintReclassified EventType = "complaint_reclassified"
	EventBreachEscalated       EventType = "sla_breach_escalated"
	EventTrustScoreChanged     EventType = "trust_score_changed"
	EventUserBanned            EventType = "user_banned"
	EventLoginBlocked          EventType = "login_blocked"
	EventOfficerCreated        EventType = "officer_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id,omitempty"`
	ActorID     *string     `json:"actor_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	CitizenID     string               `json:"citizen_id"`
	Category      domain.Category      `json:"category"`
	PriorityLevel domain.PriorityLevel `json:"priority_level"`
	DepartmentID  *string              `json:"department_id,omitempty"`
	Zone          string               `json:"zone"`
	Deadline      time.Time            `json:"deadline"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	OfficerID    string  `json:"officer_id"`
	DepartmentID *string `json:"department_id,omitempty"`
	Zone         string  `json:"zone"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Remarks   string                 `json:"remarks,omitempty"`
}

// ReclassifiedPayload payload.
type ReclassifiedPayload struct {
	OldDepartmentID *string               `json:"old_department_id,omitempty"`
	NewDepartmentID *string               `json:"new_department_id,omitempty"`
	OldPriority     domain.PriorityLevel  `json:"old_priority"`
	NewPriority     domain.PriorityLevel  `json:"new_priority"`
	Deadline        time.Time             `json:"deadline"`
}

// BreachEscalatedPayload summarizes one sweep's escalations.
type BreachEscalatedPayload struct {
	ComplaintIDs []string  `json:"complaint_ids"`
	SweepTime    time.Time `json:"sweep_time"`
}

// TrustScoreChangedPayload payload.
type TrustScoreChangedPayload struct {
	AccountID string `json:"account_id"`
	OldScore  int    `json:"old_score"`
	NewScore  int    `json:"new_score"`
}

// UserBannedPayload payload.
type UserBannedPayload struct {
	AccountID  string `json:"account_id"`
	TrustScore int    `json:"trust_score"`
}

// LoginBlockedPayload payload.
type LoginBlockedPayload struct {
	AccountID string `json:"account_id"`
}

// OfficerCreatedPayload payload.
type OfficerCreatedPayload struct {
	OfficerID    string   `json:"officer_id"`
	DepartmentID string   `json:"department_id"`
	Zones        []string `json:"zones"`
	SyncedCount  int      `json:"synced_count"`
}

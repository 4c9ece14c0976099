package domain

import "time"

// DefaultSLAHours is the global fallback when neither a rule nor a
// department default applies.
const DefaultSLAHours = 48

// EscalationTier identifies who gets notified on a breach.
type EscalationTier string

const (
	EscalateOfficer    EscalationTier = "officer"
	EscalateDeptAdmin  EscalationTier = "dept_admin"
	EscalateSuperAdmin EscalationTier = "super_admin"
)

// SLARule maps (category, priority) to a maximum resolution time.
type SLARule struct {
	ID              string
	Category        Category
	PriorityLevel   PriorityLevel
	ResolutionHours int
	EscalateTo      EscalationTier
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

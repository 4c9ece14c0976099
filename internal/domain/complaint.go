package domain

import "time"

// ComplaintStatus enumerates lifecycle states for grievances.
type ComplaintStatus string

const (
	ComplaintStatusSubmitted  ComplaintStatus = "submitted"
	ComplaintStatusAssigned   ComplaintStatus = "assigned"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ComplaintStatus) IsTerminal() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusRejected
}

// Category is the closed classification set produced by the AI classifier.
type Category string

const (
	CategoryRoad        Category = "Road"
	CategoryElectricity Category = "Electricity"
	CategoryWater       Category = "Water"
	CategoryPolice      Category = "Police"
	CategoryMedical     Category = "Medical"
	CategoryFire        Category = "Fire"
	CategoryOther       Category = "Other"
)

// KnownCategory reports whether c is part of the closed enum.
func KnownCategory(c Category) bool {
	switch c {
	case CategoryRoad, CategoryElectricity, CategoryWater, CategoryPolice, CategoryMedical, CategoryFire, CategoryOther:
		return true
	}
	return false
}

// PriorityLevel enumerates SLA urgency.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "Low"
	PriorityMedium   PriorityLevel = "Medium"
	PriorityHigh     PriorityLevel = "High"
	PriorityCritical PriorityLevel = "Critical"
)

var priorityRank = map[PriorityLevel]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

// Rank orders priority levels; unknown levels rank below Low.
func (p PriorityLevel) Rank() int {
	rank, ok := priorityRank[p]
	if !ok {
		return -1
	}
	return rank
}

// KnownPriority reports whether p is part of the closed enum.
func KnownPriority(p PriorityLevel) bool {
	_, ok := priorityRank[p]
	return ok
}

// HistoryAction labels an audit-trail entry.
type HistoryAction string

const (
	ActionStatusChange HistoryAction = "STATUS_CHANGE"
	ActionRouting      HistoryAction = "ROUTING"
	ActionReclassified HistoryAction = "RECLASSIFIED"
	ActionSLABreach    HistoryAction = "SLA_BREACH"
	ActionFeedback     HistoryAction = "FEEDBACK"
)

// HistoryEntry is an immutable audit-trail record. Entries are only ever
// appended, never edited or reordered.
type HistoryEntry struct {
	ID          string
	ComplaintID string
	Action      string
	ActorID     *string
	Remarks     string
	CreatedAt   time.Time
}

// Feedback is the citizen's rating of a resolved complaint.
type Feedback struct {
	Rating  int
	Comment string
}

// Complaint is the aggregate for citizen grievances.
type Complaint struct {
	ID           string
	ReferenceKey string
	CitizenID    string
	Title        string
	Description  string
	Location     string
	Zone         string

	Category      Category
	PriorityScore int
	PriorityLevel PriorityLevel
	Confidence    float64

	DepartmentID      *string
	AssignedOfficerID *string

	Status     ComplaintStatus
	Deadline   time.Time
	IsBreached bool

	Feedback *Feedback

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assigned reports whether an officer currently owns the complaint.
func (c *Complaint) Assigned() bool {
	return c.AssignedOfficerID != nil
}

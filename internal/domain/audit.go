package domain

import "time"

// AuditRecord is a structured event persisted by the audit sink.
type AuditRecord struct {
	ID        string
	Action    string
	ActorID   *string
	TargetID  *string
	Details   string
	IPAddress string
	CreatedAt time.Time
}

package domain

import "time"

// Officer represents routing capacity inside a department.
type Officer struct {
	ID           string
	AccountID    string
	DepartmentID string
	Mobile       string

	// JurisdictionZones lists the zone identifiers this officer covers.
	JurisdictionZones []string

	ActiveComplaints   int
	ResolvedComplaints int

	IsAvailable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CoversZone reports whether the officer's jurisdiction contains zone.
func (o *Officer) CoversZone(zone string) bool {
	for _, z := range o.JurisdictionZones {
		if z == zone {
			return true
		}
	}
	return false
}

package domain

import "time"

// Department is a routing target with a default SLA fallback.
type Department struct {
	ID              string
	Name            string
	Code            string
	DefaultSLAHours int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CategoryMapping routes a classification category to a department.
// Unmapped categories (including Other) leave a complaint unrouted.
type CategoryMapping struct {
	Category     Category
	DepartmentID string
	CreatedAt    time.Time
}

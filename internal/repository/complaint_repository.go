package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	CitizenID         *string
	DepartmentID      *string
	AssignedOfficerID *string
	Statuses          []domain.ComplaintStatus
	Zone              *string
	Limit             int
	Offset            int
}

// DepartmentCount is a per-department complaint tally.
type DepartmentCount struct {
	DepartmentID *string
	Name         string
	Count        int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	// ListOpen returns every complaint still in a non-terminal status.
	ListOpen(ctx context.Context) ([]domain.Complaint, error)
	// MarkBreached flags a complaint as breached and escalates its priority
	// to Critical in one statement. It only fires while the complaint is
	// unbreached and non-terminal, so concurrent sweeps and concurrent
	// terminal transitions cannot double-escalate. Returns whether the row
	// was updated.
	MarkBreached(ctx context.Context, id string) (bool, error)
	// AssignPending hands all unassigned complaints of a department within
	// the given zones to the officer, moving them to assigned. Returns the
	// ids of the complaints that were picked up.
	AssignPending(ctx context.Context, departmentID, officerID string, zones []string) ([]string, error)
	// ReleaseOfficer returns every non-terminal complaint held by the
	// officer to the unassigned pool.
	ReleaseOfficer(ctx context.Context, officerID string) ([]string, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error)
	CountByDepartment(ctx context.Context) ([]DepartmentCount, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, reference_key, citizen_id, title, description, location, zone,
               category, priority_score, priority_level, confidence,
               department_id, assigned_officer_id, status, deadline, is_breached,
               feedback_rating, feedback_comment, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (reference_key, citizen_id, title, description, location, zone,
            category, priority_score, priority_level, confidence,
            department_id, assigned_officer_id, status, deadline, is_breached)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.ReferenceKey,
		complaint.CitizenID,
		complaint.Title,
		complaint.Description,
		complaint.Location,
		complaint.Zone,
		complaint.Category,
		complaint.PriorityScore,
		complaint.PriorityLevel,
		complaint.Confidence,
		complaint.DepartmentID,
		complaint.AssignedOfficerID,
		complaint.Status,
		complaint.Deadline,
		complaint.IsBreached,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET category=$1, priority_score=$2, priority_level=$3,
            department_id=$4, assigned_officer_id=$5, status=$6, deadline=$7,
            is_breached=$8, feedback_rating=$9, feedback_comment=$10, updated_at=NOW()
        WHERE id=$11`
	var rating *int
	var comment *string
	if complaint.Feedback != nil {
		rating = &complaint.Feedback.Rating
		comment = &complaint.Feedback.Comment
	}
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Category,
		complaint.PriorityScore,
		complaint.PriorityLevel,
		complaint.DepartmentID,
		complaint.AssignedOfficerID,
		complaint.Status,
		complaint.Deadline,
		complaint.IsBreached,
		rating,
		comment,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanComplaintRow(row)
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CitizenID != nil {
		args = append(args, *filter.CitizenID)
		clauses = append(clauses, fmt.Sprintf("citizen_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AssignedOfficerID != nil {
		args = append(args, *filter.AssignedOfficerID)
		clauses = append(clauses, fmt.Sprintf("assigned_officer_id=$%d", len(args)))
	}
	if filter.Zone != nil {
		args = append(args, *filter.Zone)
		clauses = append(clauses, fmt.Sprintf("zone=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListOpen(ctx context.Context) ([]domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints
        WHERE status IN ('submitted','assigned','in_progress')
        ORDER BY deadline ASC`, complaintColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) MarkBreached(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE complaints SET is_breached=TRUE, priority_level='Critical', updated_at=NOW()
        WHERE id=$1 AND is_breached=FALSE AND status IN ('submitted','assigned','in_progress')`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *complaintRepository) AssignPending(ctx context.Context, departmentID, officerID string, zones []string) ([]string, error) {
	const query = `
        UPDATE complaints SET assigned_officer_id=$1, status='assigned', updated_at=NOW()
        WHERE department_id=$2 AND zone = ANY($3) AND status='submitted' AND assigned_officer_id IS NULL
        RETURNING id`
	rows, err := r.pool.Query(ctx, query, officerID, departmentID, zones)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *complaintRepository) ReleaseOfficer(ctx context.Context, officerID string) ([]string, error) {
	const query = `
        UPDATE complaints SET assigned_officer_id=NULL, status='submitted', updated_at=NOW()
        WHERE assigned_officer_id=$1 AND status IN ('assigned','in_progress')
        RETURNING id`
	rows, err := r.pool.Query(ctx, query, officerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM complaints GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) CountByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	const query = `
        SELECT c.department_id, COALESCE(d.name, 'General'), COUNT(*)
        FROM complaints c LEFT JOIN departments d ON d.id = c.department_id
        GROUP BY c.department_id, d.name
        ORDER BY COUNT(*) DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DepartmentCount
	for rows.Next() {
		var entry DepartmentCount
		if err := rows.Scan(&entry.DepartmentID, &entry.Name, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaintRow(row rowScanner) (*domain.Complaint, error) {
	var complaint domain.Complaint
	var rating *int
	var comment *string
	if err := row.Scan(
		&complaint.ID,
		&complaint.ReferenceKey,
		&complaint.CitizenID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Location,
		&complaint.Zone,
		&complaint.Category,
		&complaint.PriorityScore,
		&complaint.PriorityLevel,
		&complaint.Confidence,
		&complaint.DepartmentID,
		&complaint.AssignedOfficerID,
		&complaint.Status,
		&complaint.Deadline,
		&complaint.IsBreached,
		&rating,
		&comment,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if rating != nil {
		feedback := &domain.Feedback{Rating: *rating}
		if comment != nil {
			feedback.Comment = *comment
		}
		complaint.Feedback = feedback
	}
	return &complaint, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaintRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

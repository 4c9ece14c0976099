package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// OfficerRepository encapsulates officer persistence and load accounting.
type OfficerRepository interface {
	Create(ctx context.Context, officer *domain.Officer) error
	Update(ctx context.Context, officer *domain.Officer) error
	GetByID(ctx context.Context, id string) (*domain.Officer, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.Officer, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]domain.Officer, error)
	// FindEligible returns available officers of the department whose
	// jurisdiction covers zone, ordered by active load then id so the
	// least-loaded tie-break is deterministic.
	FindEligible(ctx context.Context, departmentID, zone string) ([]domain.Officer, error)
	// AdjustLoad atomically changes the active-complaint counter. Every
	// code path that assigns or releases a complaint goes through this
	// single statement.
	AdjustLoad(ctx context.Context, officerID string, delta int) error
	// RecordResolution moves one complaint from active to resolved in a
	// single statement.
	RecordResolution(ctx context.Context, officerID string) error
	Delete(ctx context.Context, id string) error
}

type officerRepository struct {
	pool *pgxpool.Pool
}

// NewOfficerRepository instantiates repository.
func NewOfficerRepository(pool *pgxpool.Pool) OfficerRepository {
	return &officerRepository{pool: pool}
}

const officerColumns = `id, account_id, department_id, mobile, jurisdiction_zones,
               active_complaints, resolved_complaints, is_available, created_at, updated_at`

func (r *officerRepository) Create(ctx context.Context, officer *domain.Officer) error {
	const query = `
        INSERT INTO officers (account_id, department_id, mobile, jurisdiction_zones, active_complaints, resolved_complaints, is_available)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		officer.AccountID,
		officer.DepartmentID,
		officer.Mobile,
		officer.JurisdictionZones,
		officer.ActiveComplaints,
		officer.ResolvedComplaints,
		officer.IsAvailable,
	).Scan(&officer.ID, &officer.CreatedAt, &officer.UpdatedAt)
}

func (r *officerRepository) Update(ctx context.Context, officer *domain.Officer) error {
	const query = `
        UPDATE officers SET department_id=$1, mobile=$2, jurisdiction_zones=$3, is_available=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		officer.DepartmentID,
		officer.Mobile,
		officer.JurisdictionZones,
		officer.IsAvailable,
		officer.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *officerRepository) GetByID(ctx context.Context, id string) (*domain.Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *officerRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers WHERE account_id=$1`
	return r.fetchSingle(ctx, query, accountID)
}

func (r *officerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Officer, error) {
	var officer domain.Officer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&officer.ID,
		&officer.AccountID,
		&officer.DepartmentID,
		&officer.Mobile,
		&officer.JurisdictionZones,
		&officer.ActiveComplaints,
		&officer.ResolvedComplaints,
		&officer.IsAvailable,
		&officer.CreatedAt,
		&officer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *officerRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers WHERE department_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOfficers(rows)
}

func (r *officerRepository) FindEligible(ctx context.Context, departmentID, zone string) ([]domain.Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers
        WHERE department_id=$1 AND $2 = ANY(jurisdiction_zones) AND is_available
        ORDER BY active_complaints ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, departmentID, zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOfficers(rows)
}

func (r *officerRepository) AdjustLoad(ctx context.Context, officerID string, delta int) error {
	const query = `
        UPDATE officers SET active_complaints = GREATEST(active_complaints + $1, 0), updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, delta, officerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *officerRepository) RecordResolution(ctx context.Context, officerID string) error {
	const query = `
        UPDATE officers SET active_complaints = GREATEST(active_complaints - 1, 0),
            resolved_complaints = resolved_complaints + 1, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, officerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *officerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM officers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanOfficers(rows pgx.Rows) ([]domain.Officer, error) {
	var result []domain.Officer
	for rows.Next() {
		var officer domain.Officer
		if err := rows.Scan(
			&officer.ID,
			&officer.AccountID,
			&officer.DepartmentID,
			&officer.Mobile,
			&officer.JurisdictionZones,
			&officer.ActiveComplaints,
			&officer.ResolvedComplaints,
			&officer.IsAvailable,
			&officer.CreatedAt,
			&officer.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, officer)
	}
	return result, rows.Err()
}

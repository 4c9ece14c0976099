package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// DepartmentRepository provides read/write access to departments.
type DepartmentRepository interface {
	Create(ctx context.Context, department *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository instantiates repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, department *domain.Department) error {
	const query = `
        INSERT INTO departments (name, code, default_sla_hours)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		department.Name,
		department.Code,
		department.DefaultSLAHours,
	).Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `
        SELECT id, name, code, default_sla_hours, created_at, updated_at
        FROM departments WHERE id=$1`
	var department domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&department.ID,
		&department.Name,
		&department.Code,
		&department.DefaultSLAHours,
		&department.CreatedAt,
		&department.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, code, default_sla_hours, created_at, updated_at
        FROM departments ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var department domain.Department
		if err := rows.Scan(
			&department.ID,
			&department.Name,
			&department.Code,
			&department.DefaultSLAHours,
			&department.CreatedAt,
			&department.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, department)
	}
	return result, rows.Err()
}

// CategoryMappingRepository stores the explicit category -> department table.
type CategoryMappingRepository interface {
	Upsert(ctx context.Context, mapping *domain.CategoryMapping) error
	// DepartmentFor resolves the department for a category. Returns
	// pgx.ErrNoRows when the category is unmapped.
	DepartmentFor(ctx context.Context, category domain.Category) (string, error)
	List(ctx context.Context) ([]domain.CategoryMapping, error)
}

type categoryMappingRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryMappingRepository instantiates repository.
func NewCategoryMappingRepository(pool *pgxpool.Pool) CategoryMappingRepository {
	return &categoryMappingRepository{pool: pool}
}

func (r *categoryMappingRepository) Upsert(ctx context.Context, mapping *domain.CategoryMapping) error {
	const query = `
        INSERT INTO category_mappings (category, department_id)
        VALUES ($1,$2)
        ON CONFLICT (category) DO UPDATE SET department_id=EXCLUDED.department_id
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query, mapping.Category, mapping.DepartmentID).Scan(&mapping.CreatedAt)
}

func (r *categoryMappingRepository) DepartmentFor(ctx context.Context, category domain.Category) (string, error) {
	const query = `SELECT department_id FROM category_mappings WHERE category=$1`
	var departmentID string
	if err := r.pool.QueryRow(ctx, query, category).Scan(&departmentID); err != nil {
		return "", err
	}
	return departmentID, nil
}

func (r *categoryMappingRepository) List(ctx context.Context) ([]domain.CategoryMapping, error) {
	const query = `SELECT category, department_id, created_at FROM category_mappings ORDER BY category ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryMapping
	for rows.Next() {
		var mapping domain.CategoryMapping
		if err := rows.Scan(&mapping.Category, &mapping.DepartmentID, &mapping.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, mapping)
	}
	return result, rows.Err()
}

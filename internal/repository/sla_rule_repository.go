package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// SLARuleRepository stores the (category, priority) -> resolution-hours table.
type SLARuleRepository interface {
	Upsert(ctx context.Context, rule *domain.SLARule) error
	// Find returns the active rule matching exactly (category, priority).
	// Returns pgx.ErrNoRows when no such rule exists.
	Find(ctx context.Context, category domain.Category, priority domain.PriorityLevel) (*domain.SLARule, error)
	ListActive(ctx context.Context) ([]domain.SLARule, error)
}

type slaRuleRepository struct {
	pool *pgxpool.Pool
}

// NewSLARuleRepository instantiates repository.
func NewSLARuleRepository(pool *pgxpool.Pool) SLARuleRepository {
	return &slaRuleRepository{pool: pool}
}

func (r *slaRuleRepository) Upsert(ctx context.Context, rule *domain.SLARule) error {
	const query = `
        INSERT INTO sla_rules (category, priority_level, resolution_hours, escalate_to, is_active)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (category, priority_level) DO UPDATE
            SET resolution_hours=EXCLUDED.resolution_hours,
                escalate_to=EXCLUDED.escalate_to,
                is_active=EXCLUDED.is_active,
                updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Category,
		rule.PriorityLevel,
		rule.ResolutionHours,
		rule.EscalateTo,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *slaRuleRepository) Find(ctx context.Context, category domain.Category, priority domain.PriorityLevel) (*domain.SLARule, error) {
	const query = `
        SELECT id, category, priority_level, resolution_hours, escalate_to, is_active, created_at, updated_at
        FROM sla_rules WHERE category=$1 AND priority_level=$2 AND is_active`
	var rule domain.SLARule
	if err := r.pool.QueryRow(ctx, query, category, priority).Scan(
		&rule.ID,
		&rule.Category,
		&rule.PriorityLevel,
		&rule.ResolutionHours,
		&rule.EscalateTo,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *slaRuleRepository) ListActive(ctx context.Context) ([]domain.SLARule, error) {
	const query = `
        SELECT id, category, priority_level, resolution_hours, escalate_to, is_active, created_at, updated_at
        FROM sla_rules WHERE is_active ORDER BY category ASC, priority_level ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLARule
	for rows.Next() {
		var rule domain.SLARule
		if err := rows.Scan(
			&rule.ID,
			&rule.Category,
			&rule.PriorityLevel,
			&rule.ResolutionHours,
			&rule.EscalateTo,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// SLAPolicyRepository persists response and resolution targets per priority.
type SLAPolicyRepository interface {
	Create(ctx context.Context, policy *domain.SLAPolicy) error
	Update(ctx context.Context, policy *domain.SLAPolicy) error
	GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error)
	GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error)
	List(ctx context.Context) ([]domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository instantiates the repository.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

const slaPolicyColumns = `id, name, priority,
               response_days, response_hours, response_minutes, response_working_hours,
               resolution_days, resolution_hours, resolution_minutes, resolution_working_hours,
               is_active, created_at, updated_at`

func (r *slaPolicyRepository) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (name, priority,
            response_days, response_hours, response_minutes, response_working_hours,
            resolution_days, resolution_hours, resolution_minutes, resolution_working_hours, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.Name,
		policy.Priority,
		policy.Response.Days,
		policy.Response.Hours,
		policy.Response.Minutes,
		policy.Response.WorkingHours,
		policy.Resolution.Days,
		policy.Resolution.Hours,
		policy.Resolution.Minutes,
		policy.Resolution.WorkingHours,
		policy.IsActive,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *slaPolicyRepository) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        UPDATE sla_policies SET name=$1, priority=$2,
            response_days=$3, response_hours=$4, response_minutes=$5, response_working_hours=$6,
            resolution_days=$7, resolution_hours=$8, resolution_minutes=$9, resolution_working_hours=$10,
            is_active=$11, updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.Name,
		policy.Priority,
		policy.Response.Days,
		policy.Response.Hours,
		policy.Response.Minutes,
		policy.Response.WorkingHours,
		policy.Resolution.Days,
		policy.Resolution.Hours,
		policy.Resolution.Minutes,
		policy.Resolution.WorkingHours,
		policy.IsActive,
		policy.ID,
	).Scan(&policy.UpdatedAt)
}

func (r *slaPolicyRepository) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	return r.fetchSingle(ctx, `SELECT `+slaPolicyColumns+` FROM sla_policies WHERE id=$1`, id)
}

func (r *slaPolicyRepository) GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	return r.fetchSingle(ctx, `SELECT `+slaPolicyColumns+` FROM sla_policies WHERE priority=$1 AND is_active`, priority)
}

func (r *slaPolicyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.SLAPolicy, error) {
	var policy domain.SLAPolicy
	if err := scanSLAPolicy(r.pool.QueryRow(ctx, query, arg), &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaPolicyRepository) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+slaPolicyColumns+` FROM sla_policies ORDER BY priority, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := scanSLAPolicy(rows, &policy); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}

func scanSLAPolicy(row pgx.Row, policy *domain.SLAPolicy) error {
	return row.Scan(
		&policy.ID,
		&policy.Name,
		&policy.Priority,
		&policy.Response.Days,
		&policy.Response.Hours,
		&policy.Response.Minutes,
		&policy.Response.WorkingHours,
		&policy.Resolution.Days,
		&policy.Resolution.Hours,
		&policy.Resolution.Minutes,
		&policy.Resolution.WorkingHours,
		&policy.IsActive,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	)
}

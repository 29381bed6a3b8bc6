package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// OperationalHoursRepository persists the singleton business-hours row.
type OperationalHoursRepository interface {
	Get(ctx context.Context) (*domain.OperationalHours, error)
	Save(ctx context.Context, hours *domain.OperationalHours) error
}

type operationalHoursRepository struct {
	pool *pgxpool.Pool
}

// NewOperationalHoursRepository instantiates the repository.
func NewOperationalHoursRepository(pool *pgxpool.Pool) OperationalHoursRepository {
	return &operationalHoursRepository{pool: pool}
}

// Get returns pgx.ErrNoRows until the calendar has been seeded.
func (r *operationalHoursRepository) Get(ctx context.Context) (*domain.OperationalHours, error) {
	const query = `
        SELECT id, mode, standard_window, standard_breaks, working_days, updated_at
        FROM operational_hours LIMIT 1`

	var (
		hours                       domain.OperationalHours
		window, breaks, workingDays []byte
	)
	if err := r.pool.QueryRow(ctx, query).Scan(
		&hours.ID,
		&hours.Mode,
		&window,
		&breaks,
		&workingDays,
		&hours.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(window, &hours.StandardWindow); err != nil {
		return nil, fmt.Errorf("decode standard_window: %w", err)
	}
	if err := json.Unmarshal(breaks, &hours.StandardBreaks); err != nil {
		return nil, fmt.Errorf("decode standard_breaks: %w", err)
	}
	if err := json.Unmarshal(workingDays, &hours.WorkingDays); err != nil {
		return nil, fmt.Errorf("decode working_days: %w", err)
	}
	return &hours, nil
}

// Save inserts or replaces the singleton row.
func (r *operationalHoursRepository) Save(ctx context.Context, hours *domain.OperationalHours) error {
	const query = `
        INSERT INTO operational_hours (mode, standard_window, standard_breaks, working_days)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (singleton) DO UPDATE
        SET mode=EXCLUDED.mode, standard_window=EXCLUDED.standard_window,
            standard_breaks=EXCLUDED.standard_breaks, working_days=EXCLUDED.working_days, updated_at=NOW()
        RETURNING id, updated_at`

	window, err := json.Marshal(hours.StandardWindow)
	if err != nil {
		return err
	}
	breaks := hours.StandardBreaks
	if breaks == nil {
		breaks = []domain.TimeRange{}
	}
	breaksJSON, err := json.Marshal(breaks)
	if err != nil {
		return err
	}
	workingDays, err := json.Marshal(hours.WorkingDays)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx, query, hours.Mode, window, breaksJSON, workingDays).
		Scan(&hours.ID, &hours.UpdatedAt)
}

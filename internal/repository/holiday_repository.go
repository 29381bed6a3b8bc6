package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// HolidayRepository persists exclusion days.
type HolidayRepository interface {
	Create(ctx context.Context, holiday *domain.Holiday) error
	Update(ctx context.Context, holiday *domain.Holiday) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Holiday, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Holiday, error)
}

type holidayRepository struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository instantiates the repository.
func NewHolidayRepository(pool *pgxpool.Pool) HolidayRepository {
	return &holidayRepository{pool: pool}
}

const holidayColumns = `id, name, holiday_date, is_recurring, is_active, created_at, updated_at`

func (r *holidayRepository) Create(ctx context.Context, holiday *domain.Holiday) error {
	const query = `
        INSERT INTO holidays (name, holiday_date, is_recurring, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		holiday.Name,
		holiday.Date,
		holiday.IsRecurring,
		holiday.IsActive,
	).Scan(&holiday.ID, &holiday.CreatedAt, &holiday.UpdatedAt)
}

func (r *holidayRepository) Update(ctx context.Context, holiday *domain.Holiday) error {
	const query = `
        UPDATE holidays SET name=$1, holiday_date=$2, is_recurring=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		holiday.Name,
		holiday.Date,
		holiday.IsRecurring,
		holiday.IsActive,
		holiday.ID,
	).Scan(&holiday.UpdatedAt)
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *holidayRepository) GetByID(ctx context.Context, id string) (*domain.Holiday, error) {
	var holiday domain.Holiday
	row := r.pool.QueryRow(ctx, `SELECT `+holidayColumns+` FROM holidays WHERE id=$1`, id)
	if err := scanHoliday(row, &holiday); err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *holidayRepository) List(ctx context.Context, activeOnly bool) ([]domain.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY holiday_date ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Holiday
	for rows.Next() {
		var holiday domain.Holiday
		if err := scanHoliday(rows, &holiday); err != nil {
			return nil, err
		}
		result = append(result, holiday)
	}
	return result, rows.Err()
}

func scanHoliday(row pgx.Row, holiday *domain.Holiday) error {
	return row.Scan(
		&holiday.ID,
		&holiday.Name,
		&holiday.Date,
		&holiday.IsRecurring,
		&holiday.IsActive,
		&holiday.CreatedAt,
		&holiday.UpdatedAt,
	)
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// HolidayRepository lists the holiday calendar.
type HolidayRepository interface {
	ListHolidays(ctx context.Context) ([]domain.Holiday, error)
}

type holidayRepository struct {
	pool *pgxpool.Pool
}

// NewHolidayRepository instantiates the repository.
func NewHolidayRepository(pool *pgxpool.Pool) HolidayRepository {
	return &holidayRepository{pool: pool}
}

func (r *holidayRepository) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	const query = `SELECT id, holiday_date, name, is_recurring FROM holidays ORDER BY holiday_date ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Holiday
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.IsRecurring); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

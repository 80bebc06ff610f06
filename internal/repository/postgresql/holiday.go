package postgresql

import (
	"context"
	"time"

	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

func (r *holidayRepositoryImpl) ActiveDatesForYears(ctx context.Context, years []int) ([]time.Time, error) {
	if len(years) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT holiday_date
		FROM holidays
		WHERE is_active = true AND EXTRACT(YEAR FROM holiday_date) = ANY($1)
		ORDER BY holiday_date ASC
	`, years)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *holidayRepositoryImpl) ListActive(ctx context.Context, year int) ([]leave.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, holiday_date, name, is_active
		FROM holidays
		WHERE is_active = true AND EXTRACT(YEAR FROM holiday_date) = $1
		ORDER BY holiday_date ASC
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []leave.Holiday
	for rows.Next() {
		var h leave.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.IsActive); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

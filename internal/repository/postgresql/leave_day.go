package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
)

type leaveDayRepositoryImpl struct {
	db *database.DB
}

func NewLeaveDayRepository(db *database.DB) leave.DayRepository {
	return &leaveDayRepositoryImpl{db: db}
}

func (r *leaveDayRepositoryImpl) CreateBatch(ctx context.Context, days []leave.LeaveDay) error {
	if len(days) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(days))
	valueArgs := make([]interface{}, 0, len(days)*5)

	for i := range days {
		if days[i].ID == "" {
			days[i].ID = uuid.NewString()
		}
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))
		valueArgs = append(valueArgs, days[i].ID, days[i].RequestID, days[i].Date, days[i].DayType, days[i].Status)
	}

	query := `INSERT INTO leave_days (id, request_id, leave_date, day_type, status) VALUES `
	for i, vs := range valueStrings {
		if i > 0 {
			query += ", "
		}
		query += vs
	}

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert leave days: %w", err)
	}
	return nil
}

func (r *leaveDayRepositoryImpl) DeleteByRequest(ctx context.Context, requestID string) error {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `DELETE FROM leave_days WHERE request_id = $1`, requestID)
	return err
}

func (r *leaveDayRepositoryImpl) ListByRequest(ctx context.Context, requestID string) ([]leave.LeaveDay, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, request_id, leave_date, day_type, status
		FROM leave_days
		WHERE request_id = $1
		ORDER BY leave_date ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []leave.LeaveDay
	for rows.Next() {
		var d leave.LeaveDay
		if err := rows.Scan(&d.ID, &d.RequestID, &d.Date, &d.DayType, &d.Status); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *leaveDayRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveDay, error) {
	q := GetQuerier(ctx, r.db)

	var d leave.LeaveDay
	err := q.QueryRow(ctx, `
		SELECT id, request_id, leave_date, day_type, status
		FROM leave_days
		WHERE id = $1
	`, id).Scan(&d.ID, &d.RequestID, &d.Date, &d.DayType, &d.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveDay{}, leave.ErrDayNotFound
		}
		return leave.LeaveDay{}, err
	}
	return d, nil
}

// scopeGuard builds the relationship guard appended to day updates.
// The pre-check in the service can go stale between read and write;
// the guard makes the update itself refuse out-of-authority rows, and
// zero rows affected is treated as an authorization failure upstream.
func scopeGuard(scope leave.ApproverScope, argIdx int) (string, []interface{}, error) {
	base := `EXISTS (
		SELECT 1 FROM leave_requests lr
		JOIN users u ON u.id = lr.employee_id
		WHERE lr.id = leave_days.request_id`

	switch scope.Role {
	case user.RoleManager:
		return base + fmt.Sprintf(` AND u.reporting_manager_id = $%d)`, argIdx),
			[]interface{}{scope.ActorID}, nil
	case user.RoleHR:
		return base + ` AND u.role IN ('employee', 'manager'))`, nil, nil
	case user.RoleSuperAdmin:
		return base + `)`, nil, nil
	}
	return "", nil, leave.ErrNotAuthorized
}

func (r *leaveDayRepositoryImpl) TransitionDay(ctx context.Context, dayID string, to leave.DayStatus, scope leave.ApproverScope) (int64, error) {
	q := GetQuerier(ctx, r.db)

	guard, guardArgs, err := scopeGuard(scope, 3)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		UPDATE leave_days
		SET status = $1
		WHERE id = $2 AND status = 'pending' AND %s
	`, guard)

	args := append([]interface{}{to, dayID}, guardArgs...)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to transition leave day %s: %w", dayID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *leaveDayRepositoryImpl) TransitionAllPending(ctx context.Context, requestID string, to leave.DayStatus, scope leave.ApproverScope) ([]leave.LeaveDay, error) {
	q := GetQuerier(ctx, r.db)

	guard, guardArgs, err := scopeGuard(scope, 3)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE leave_days
		SET status = $1
		WHERE request_id = $2 AND status = 'pending' AND %s
		RETURNING id, request_id, leave_date, day_type, status
	`, guard)

	args := append([]interface{}{to, requestID}, guardArgs...)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to transition leave days for request %s: %w", requestID, err)
	}
	defer rows.Close()

	var days []leave.LeaveDay
	for rows.Next() {
		var d leave.LeaveDay
		if err := rows.Scan(&d.ID, &d.RequestID, &d.Date, &d.DayType, &d.Status); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

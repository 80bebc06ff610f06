package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const requestColumns = `
	lr.id, lr.employee_id, lr.leave_type,
	lr.start_date, lr.end_date, lr.start_portion, lr.end_portion,
	lr.reason, lr.no_of_days, lr.status,
	lr.manager_status, lr.manager_acted_at, lr.manager_comment, lr.manager_acted_by,
	lr.hr_status, lr.hr_acted_at, lr.hr_comment, lr.hr_acted_by,
	lr.admin_status, lr.admin_acted_at, lr.admin_comment, lr.admin_acted_by,
	lr.created_at, lr.updated_at,
	u.full_name AS employee_name`

func scanRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	var employeeName string

	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.LeaveType,
		&lr.StartDate, &lr.EndDate, &lr.StartPortion, &lr.EndPortion,
		&lr.Reason, &lr.NoOfDays, &lr.Status,
		&lr.ManagerApproval.Status, &lr.ManagerApproval.ActedAt, &lr.ManagerApproval.Comment, &lr.ManagerApproval.ActorID,
		&lr.HRApproval.Status, &lr.HRApproval.ActedAt, &lr.HRApproval.Comment, &lr.HRApproval.ActorID,
		&lr.AdminApproval.Status, &lr.AdminApproval.ActedAt, &lr.AdminApproval.Comment, &lr.AdminApproval.ActorID,
		&lr.CreatedAt, &lr.UpdatedAt,
		&employeeName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	lr.EmployeeName = &employeeName
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = uuid.NewString()
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type,
			start_date, end_date, start_portion, end_portion,
			reason, no_of_days, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			NOW(), NOW()
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.LeaveType,
		request.StartDate, request.EndDate, request.StartPortion, request.EndPortion,
		request.Reason, request.NoOfDays, request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN users u ON lr.employee_id = u.id
		WHERE lr.id = $1
	`, requestColumns)

	return scanRequest(q.QueryRow(ctx, query, id))
}

func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN users u ON lr.employee_id = u.id
		WHERE lr.employee_id = $1
		ORDER BY lr.created_at DESC
	`, requestColumns)

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// ListPendingForApprover returns requests that still have undecided days
// and fall inside the approver's authority. The same relationship rules
// guard the day updates themselves; this is just the worklist view.
func (r *leaveRequestRepositoryImpl) ListPendingForApprover(ctx context.Context, scope leave.ApproverScope) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	base := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN users u ON lr.employee_id = u.id
		WHERE lr.status IN ('pending', 'partially_approved')
		  AND lr.employee_id <> $1
	`, requestColumns)

	args := []interface{}{scope.ActorID}

	switch scope.Role {
	case user.RoleManager:
		base += ` AND u.reporting_manager_id = $2`
		args = append(args, scope.ActorID)
	case user.RoleHR:
		base += ` AND u.role IN ('employee', 'manager')`
	case user.RoleSuperAdmin:
		// unrestricted
	default:
		return nil, leave.ErrNotAuthorized
	}

	base += ` ORDER BY lr.created_at ASC`

	rows, err := q.Query(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

func (r *leaveRequestRepositoryImpl) RewriteWindow(ctx context.Context, id string, start, end time.Time, startPortion, endPortion leave.DayPortion, reason string, noOfDays decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET start_date = $1, end_date = $2, start_portion = $3, end_portion = $4,
		    reason = $5, no_of_days = $6, updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query, start, end, startPortion, endPortion, reason, noOfDays, id)
	if err != nil {
		return fmt.Errorf("failed to rewrite leave request %s: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.RequestStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_requests SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for leave request %s: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrRequestNotFound
	}
	return nil
}

// RecordApproval writes the role-specific approval sub-fields on the
// header. Called for every day-level action regardless of which day was
// touched.
func (r *leaveRequestRepositoryImpl) RecordApproval(ctx context.Context, id string, role user.Role, mark leave.ApprovalMark) error {
	q := GetQuerier(ctx, r.db)

	var prefix string
	switch role {
	case user.RoleManager:
		prefix = "manager"
	case user.RoleHR:
		prefix = "hr"
	case user.RoleSuperAdmin:
		prefix = "admin"
	default:
		return leave.ErrNotAuthorized
	}

	query := fmt.Sprintf(`
		UPDATE leave_requests
		SET %[1]s_status = $1, %[1]s_acted_at = $2, %[1]s_comment = $3, %[1]s_acted_by = $4, updated_at = NOW()
		WHERE id = $5
	`, prefix)

	tag, err := q.Exec(ctx, query, mark.Status, mark.ActedAt, mark.Comment, mark.ActorID, id)
	if err != nil {
		return fmt.Errorf("failed to record %s approval on leave request %s: %w", prefix, id, err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) UpdateLeaveType(ctx context.Context, id string, leaveType leave.LeaveType) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_requests SET leave_type = $1, updated_at = NOW() WHERE id = $2
	`, leaveType, id)
	if err != nil {
		return fmt.Errorf("failed to update leave type for request %s: %w", id, err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrRequestNotFound
	}
	return nil
}

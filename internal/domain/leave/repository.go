package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
)

// ApproverScope carries the acting approver into guarded day updates.
// Repositories translate it into a WHERE EXISTS clause so a stale
// pre-check can never let a manager touch someone else's report:
// zero rows affected is treated as an authorization failure upstream.
type ApproverScope struct {
	Role    user.Role
	ActorID string
}

// RequestRepository - interface for the leave_requests table
type RequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	// ListPendingForApprover returns requests with undecided days that
	// the scope's role may act on.
	ListPendingForApprover(ctx context.Context, scope ApproverScope) ([]LeaveRequest, error)
	// RewriteWindow updates the date window, portions, reason and day
	// count of a pending request.
	RewriteWindow(ctx context.Context, id string, start, end time.Time, startPortion, endPortion DayPortion, reason string, noOfDays decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, status RequestStatus) error
	// RecordApproval writes the role-specific approval sub-fields.
	RecordApproval(ctx context.Context, id string, role user.Role, mark ApprovalMark) error
	UpdateLeaveType(ctx context.Context, id string, leaveType LeaveType) error
	Delete(ctx context.Context, id string) error
}

// DayRepository - interface for the leave_days table
type DayRepository interface {
	CreateBatch(ctx context.Context, days []LeaveDay) error
	DeleteByRequest(ctx context.Context, requestID string) error
	ListByRequest(ctx context.Context, requestID string) ([]LeaveDay, error)
	GetByID(ctx context.Context, id string) (LeaveDay, error)
	// TransitionDay moves one pending day to the target status, guarded
	// by the approver scope. Returns the rows affected.
	TransitionDay(ctx context.Context, dayID string, to DayStatus, scope ApproverScope) (int64, error)
	// TransitionAllPending moves every pending day of the request to the
	// target status, guarded by the approver scope. Returns the days
	// actually transitioned.
	TransitionAllPending(ctx context.Context, requestID string, to DayStatus, scope ApproverScope) ([]LeaveDay, error)
}

// BalanceRepository - interface for the leave_balances table
type BalanceRepository interface {
	GetByEmployee(ctx context.Context, employeeID string) (LeaveBalance, error)
	Create(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	// Add applies `SET col = col + delta` on the column matching the
	// leave type. Negative delta debits. Race-safe by construction.
	Add(ctx context.Context, employeeID string, leaveType LeaveType, delta decimal.Decimal) error
}

// HolidayRepository - interface for the holidays table
type HolidayRepository interface {
	// ActiveDatesForYears returns the active holiday dates of the given
	// calendar years, for hydrating the business-day calculator.
	ActiveDatesForYears(ctx context.Context, years []int) ([]time.Time, error)
	ListActive(ctx context.Context, year int) ([]Holiday, error)
}

// RuleRepository - interface for the leave_rules table
type RuleRepository interface {
	ListActive(ctx context.Context) ([]LeaveRule, error)
	// GetForDayCount returns the rule band covering the day count, or
	// ErrRuleNotFound when no band matches.
	GetForDayCount(ctx context.Context, days decimal.Decimal) (LeaveRule, error)
}

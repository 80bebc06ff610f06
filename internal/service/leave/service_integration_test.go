package leave_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
	"github.com/worknest/intranet-backend-go/internal/repository/postgresql"
	leaveservice "github.com/worknest/intranet-backend-go/internal/service/leave"
)

var (
	engineTestDB   *database.DB
	engineTestOnce sync.Once
)

// engineDB connects once per test binary and bootstraps the schema.
// Tests are skipped entirely when TEST_DATABASE_URL is not set.
func engineDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration tests")
	}

	engineTestOnce.Do(func() {
		var err error
		engineTestDB, err = database.NewPostgreSQLDB(dsn)
		if err != nil {
			panic("Failed to connect to test database: " + err.Error())
		}
		ensureEngineSchema(engineTestDB)
	})
	return engineTestDB
}

func ensureEngineSchema(db *database.DB) {
	ctx := context.Background()
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			reporting_manager_id TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS leave_requests (
			id TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL REFERENCES users(id),
			leave_type TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			start_portion TEXT NOT NULL,
			end_portion TEXT NOT NULL,
			reason TEXT NOT NULL,
			no_of_days NUMERIC(5,1) NOT NULL,
			status TEXT NOT NULL,
			manager_status TEXT, manager_acted_at TIMESTAMPTZ, manager_comment TEXT, manager_acted_by TEXT,
			hr_status TEXT, hr_acted_at TIMESTAMPTZ, hr_comment TEXT, hr_acted_by TEXT,
			admin_status TEXT, admin_acted_at TIMESTAMPTZ, admin_comment TEXT, admin_acted_by TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS leave_days (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL REFERENCES leave_requests(id) ON DELETE CASCADE,
			leave_date DATE NOT NULL,
			day_type TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leave_balances (
			id TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL UNIQUE REFERENCES users(id),
			casual_balance NUMERIC(5,1) NOT NULL,
			sick_balance NUMERIC(5,1) NOT NULL,
			lop_balance NUMERIC(5,1) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS holidays (
			id TEXT PRIMARY KEY,
			holiday_date DATE NOT NULL,
			name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS leave_rules (
			id TEXT PRIMARY KEY,
			min_days NUMERIC(5,1) NOT NULL,
			max_days NUMERIC(5,1) NOT NULL,
			notice_days INT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			panic("Failed to bootstrap test schema: " + err.Error())
		}
	}
}

// silentDispatcher drops every event so workflow tests observe only
// the state the engine writes.
type silentDispatcher struct{}

func (silentDispatcher) LeaveApplied(context.Context, user.User, leave.LeaveRequest) {}
func (silentDispatcher) LeaveDecision(context.Context, user.User, leave.LeaveRequest, user.User, leave.DayStatus, string) {
}
func (silentDispatcher) LeaveEdited(context.Context, user.User, leave.LeaveRequest)    {}
func (silentDispatcher) LeaveDeleted(context.Context, user.User, leave.LeaveRequest)   {}
func (silentDispatcher) LeaveConverted(context.Context, user.User, leave.LeaveRequest) {}

type engineFixture struct {
	svc      leave.Service
	balances leave.BalanceRepository
	db       *database.DB
}

func newEngine(t *testing.T) engineFixture {
	t.Helper()
	db := engineDB(t)

	balances := postgresql.NewLeaveBalanceRepository(db)
	svc := leaveservice.NewLeaveService(
		db,
		postgresql.NewUserRepository(db),
		postgresql.NewLeaveRequestRepository(db),
		postgresql.NewLeaveDayRepository(db),
		postgresql.NewHolidayRepository(db),
		postgresql.NewLeaveRuleRepository(db),
		leaveservice.NewLedger(balances),
		leaveservice.NewCalendar(),
		silentDispatcher{},
		3,
	)
	return engineFixture{svc: svc, balances: balances, db: db}
}

func newEngineUser(t *testing.T, db *database.DB, role user.Role, managerID *string) user.User {
	t.Helper()
	u := user.User{
		ID:                 uuid.NewString(),
		FullName:           "Test " + string(role),
		Email:              fmt.Sprintf("%s-%s@worknest.local", role, uuid.NewString()[:8]),
		Role:               role,
		ReportingManagerID: managerID,
		IsActive:           true,
	}
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, full_name, email, role, reporting_manager_id, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
	`, u.ID, u.FullName, u.Email, string(u.Role), u.ReportingManagerID)
	require.NoError(t, err)
	return u
}

// upcomingMonday returns the first Monday at least minAhead days out,
// so windows land on weekdays regardless of when the suite runs.
func upcomingMonday(minAhead int) time.Time {
	now := time.Now()
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, minAhead)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func casualApplication(employeeID string, start, end time.Time) leave.ApplyLeaveRequest {
	return leave.ApplyLeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  string(leave.LeaveTypeCasual),
		StartDate:  start.Format("2006-01-02"),
		EndDate:    end.Format("2006-01-02"),
		Reason:     "workflow test",
	}
}

func casualBalance(t *testing.T, f engineFixture, employeeID string) decimal.Decimal {
	t.Helper()
	balance, err := f.balances.GetByEmployee(context.Background(), employeeID)
	require.NoError(t, err)
	return balance.Casual
}

func TestLeaveService_NoticeRules(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	employee := newEngineUser(t, f.db, user.RoleEmployee, nil)

	ruleID := uuid.NewString()
	_, err := f.db.Exec(ctx, `
		INSERT INTO leave_rules (id, min_days, max_days, notice_days, is_active)
		VALUES ($1, 0.5, 99, 30, true)
	`, ruleID)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = f.db.Exec(context.Background(), `DELETE FROM leave_rules WHERE id = $1`, ruleID)
	})

	start := upcomingMonday(7)

	// Casual consults the matching rule band and is short of 30 days notice
	_, err = f.svc.Apply(ctx, casualApplication(employee.ID, start, start))
	var vErr *leave.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "notice")

	// Sick ignores the bands entirely
	sick := casualApplication(employee.ID, start, start)
	sick.LeaveType = string(leave.LeaveTypeSick)
	created, err := f.svc.Apply(ctx, sick)
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusPending, created.Status)

	// Without a matching band casual falls back to the default notice
	_, err = f.db.Exec(ctx, `DELETE FROM leave_rules WHERE id = $1`, ruleID)
	require.NoError(t, err)
	created, err = f.svc.Apply(ctx, casualApplication(employee.ID, start, start))
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusPending, created.Status)
}

func TestLeaveService_RejectDayRefundsExactlyOnce(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	manager := newEngineUser(t, f.db, user.RoleManager, nil)
	employee := newEngineUser(t, f.db, user.RoleEmployee, &manager.ID)

	start := upcomingMonday(7)
	created, err := f.svc.Apply(ctx, casualApplication(employee.ID, start, start.AddDate(0, 0, 2)))
	require.NoError(t, err)
	require.Len(t, created.Days, 3)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(9)))

	dayID := created.Days[0].ID
	require.NotEmpty(t, dayID)

	// Rejecting one day refunds that day's charge and only that
	updated, err := f.svc.RejectDay(ctx, manager.ID, created.ID, dayID, leave.DecisionRequest{Comment: "covered"})
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusPending, updated.Status)
	assert.Equal(t, leave.DayStatusRejected, updated.Days[0].Status)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(10)))

	// Rejecting it again is a no-op, not a second refund
	_, err = f.svc.RejectDay(ctx, manager.ID, created.ID, dayID, leave.DecisionRequest{})
	require.NoError(t, err)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(10)))

	// Flipping a terminal day is a conflict
	_, err = f.svc.ApproveDay(ctx, manager.ID, created.ID, dayID, leave.DecisionRequest{})
	assert.ErrorIs(t, err, leave.ErrDayAlreadyProcessed)
}

func TestLeaveService_RejectRequestRefundsPendingOnly(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	manager := newEngineUser(t, f.db, user.RoleManager, nil)
	employee := newEngineUser(t, f.db, user.RoleEmployee, &manager.ID)

	start := upcomingMonday(7)
	created, err := f.svc.Apply(ctx, casualApplication(employee.ID, start, start.AddDate(0, 0, 2)))
	require.NoError(t, err)

	_, err = f.svc.RejectDay(ctx, manager.ID, created.ID, created.Days[0].ID, leave.DecisionRequest{})
	require.NoError(t, err)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(10)))

	// Request-level rejection refunds the two still-pending days; the
	// day rejected above was refunded already and must not be again
	updated, err := f.svc.RejectRequest(ctx, manager.ID, created.ID, leave.DecisionRequest{Comment: "project freeze"})
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusRejected, updated.Status)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(12)))

	_, err = f.svc.RejectRequest(ctx, manager.ID, created.ID, leave.DecisionRequest{})
	var vErr *leave.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLeaveService_EditRebalancesCharge(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	employee := newEngineUser(t, f.db, user.RoleEmployee, nil)
	outsider := newEngineUser(t, f.db, user.RoleEmployee, nil)

	start := upcomingMonday(7)
	created, err := f.svc.Apply(ctx, casualApplication(employee.ID, start, start.AddDate(0, 0, 2)))
	require.NoError(t, err)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(9)))

	updated, err := f.svc.Edit(ctx, leave.EditLeaveRequest{
		RequestID:  created.ID,
		EmployeeID: employee.ID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    start.AddDate(0, 0, 1).Format("2006-01-02"),
		Reason:     "shorter trip",
	})
	require.NoError(t, err)

	// The charge matches the rewritten window: old debit credited back,
	// new one taken, day rows rebuilt to sum to no_of_days
	assert.True(t, updated.NoOfDays.Equal(decimal.NewFromInt(2)))
	require.Len(t, updated.Days, 2)
	total := decimal.Zero
	for _, d := range updated.Days {
		assert.Equal(t, leave.DayStatusPending, d.Status)
		total = total.Add(d.Charge)
	}
	assert.True(t, total.Equal(updated.NoOfDays))
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(10)))

	_, err = f.svc.Edit(ctx, leave.EditLeaveRequest{
		RequestID:  created.ID,
		EmployeeID: outsider.ID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    start.Format("2006-01-02"),
		Reason:     "not mine",
	})
	assert.ErrorIs(t, err, leave.ErrNotOwner)
}

func TestLeaveService_ApproveRequestFinalizes(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	manager := newEngineUser(t, f.db, user.RoleManager, nil)
	employee := newEngineUser(t, f.db, user.RoleEmployee, &manager.ID)

	start := upcomingMonday(7)
	created, err := f.svc.Apply(ctx, casualApplication(employee.ID, start, start))
	require.NoError(t, err)
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(11)))

	updated, err := f.svc.ApproveRequest(ctx, manager.ID, created.ID, leave.DecisionRequest{Comment: "enjoy"})
	require.NoError(t, err)
	assert.Equal(t, leave.RequestStatusApproved, updated.Status)
	require.NotNil(t, updated.ManagerApproval.Status)
	assert.Equal(t, leave.DayStatusApproved, *updated.ManagerApproval.Status)

	// Approval keeps the debit in place
	assert.True(t, casualBalance(t, f, employee.ID).Equal(decimal.NewFromInt(11)))

	_, err = f.svc.ApproveRequest(ctx, manager.ID, created.ID, leave.DecisionRequest{})
	assert.ErrorIs(t, err, leave.ErrAlreadyFinalized)
}

func TestLeaveService_SelfApprovalForbidden(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	manager := newEngineUser(t, f.db, user.RoleManager, nil)

	start := upcomingMonday(7)
	created, err := f.svc.Apply(ctx, casualApplication(manager.ID, start, start))
	require.NoError(t, err)

	_, err = f.svc.ApproveRequest(ctx, manager.ID, created.ID, leave.DecisionRequest{})
	assert.ErrorIs(t, err, leave.ErrSelfApproval)
}

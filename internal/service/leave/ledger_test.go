package leave

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
)

// fakeBalanceRepo keeps balances in memory, mirroring the column
// arithmetic of the real repository.
type fakeBalanceRepo struct {
	balances map[string]leave.LeaveBalance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]leave.LeaveBalance)}
}

func (f *fakeBalanceRepo) GetByEmployee(_ context.Context, employeeID string) (leave.LeaveBalance, error) {
	b, ok := f.balances[employeeID]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (f *fakeBalanceRepo) Create(_ context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	f.balances[balance.EmployeeID] = balance
	return balance, nil
}

func (f *fakeBalanceRepo) Add(_ context.Context, employeeID string, leaveType leave.LeaveType, delta decimal.Decimal) error {
	b, ok := f.balances[employeeID]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	switch leaveType {
	case leave.LeaveTypeCasual:
		b.Casual = b.Casual.Add(delta)
	case leave.LeaveTypeSick:
		b.Sick = b.Sick.Add(delta)
	case leave.LeaveTypeLOP:
		b.LOP = b.LOP.Add(delta)
	}
	f.balances[employeeID] = b
	return nil
}

func TestLedger_GetOrInit_CreatesDefaults(t *testing.T) {
	repo := newFakeBalanceRepo()
	ledger := NewLedger(repo)

	balance, err := ledger.GetOrInit(context.Background(), "emp-1")
	require.NoError(t, err)

	assert.True(t, balance.Casual.Equal(leave.DefaultCasualBalance))
	assert.True(t, balance.Sick.Equal(leave.DefaultSickBalance))
	assert.True(t, balance.LOP.Equal(leave.DefaultLOPBalance))
}

func TestLedger_GetOrInit_ReturnsExisting(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.balances["emp-1"] = leave.LeaveBalance{
		EmployeeID: "emp-1",
		Casual:     decimal.NewFromFloat(2.5),
		Sick:       decimal.NewFromInt(6),
	}
	ledger := NewLedger(repo)

	balance, err := ledger.GetOrInit(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.True(t, balance.Casual.Equal(decimal.NewFromFloat(2.5)))
}

func TestLedger_EnsureSufficient_Casual(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.balances["emp-1"] = leave.LeaveBalance{
		EmployeeID: "emp-1",
		Casual:     decimal.NewFromFloat(2.5),
	}
	ledger := NewLedger(repo)
	ctx := context.Background()

	assert.NoError(t, ledger.EnsureSufficient(ctx, "emp-1", leave.LeaveTypeCasual, decimal.NewFromFloat(2.5)))

	err := ledger.EnsureSufficient(ctx, "emp-1", leave.LeaveTypeCasual, decimal.NewFromInt(3))
	var validationErr *leave.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Message, "insufficient casual balance")
}

func TestLedger_EnsureSufficient_LOPRequiresExhaustedCasual(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.balances["emp-1"] = leave.LeaveBalance{
		EmployeeID: "emp-1",
		Casual:     decimal.NewFromFloat(0.5),
	}
	ledger := NewLedger(repo)
	ctx := context.Background()

	err := ledger.EnsureSufficient(ctx, "emp-1", leave.LeaveTypeLOP, decimal.NewFromInt(2))
	var validationErr *leave.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Exactly zero casual opens LOP up, whatever the amount
	repo.balances["emp-1"] = leave.LeaveBalance{EmployeeID: "emp-1", Casual: decimal.Zero}
	assert.NoError(t, ledger.EnsureSufficient(ctx, "emp-1", leave.LeaveTypeLOP, decimal.NewFromInt(10)))
}

func TestLedger_EnsureSufficient_PermissionUntracked(t *testing.T) {
	ledger := NewLedger(newFakeBalanceRepo())

	// No balance row exists and none is needed
	assert.NoError(t, ledger.EnsureSufficient(context.Background(), "emp-1", leave.LeaveTypePermission, decimal.NewFromInt(1)))
}

func TestLedger_DebitCredit_RoundTrip(t *testing.T) {
	repo := newFakeBalanceRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	_, err := ledger.GetOrInit(ctx, "emp-1")
	require.NoError(t, err)

	amount := decimal.NewFromFloat(3.5)
	require.NoError(t, ledger.Debit(ctx, "emp-1", leave.LeaveTypeCasual, amount))

	balance, err := ledger.GetOrInit(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, balance.Casual.Equal(leave.DefaultCasualBalance.Sub(amount)))

	require.NoError(t, ledger.Credit(ctx, "emp-1", leave.LeaveTypeCasual, amount))

	balance, err = ledger.GetOrInit(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, balance.Casual.Equal(leave.DefaultCasualBalance))
}

func TestLedger_Debit_IgnoresPermission(t *testing.T) {
	repo := newFakeBalanceRepo()
	ledger := NewLedger(repo)

	require.NoError(t, ledger.Debit(context.Background(), "emp-1", leave.LeaveTypePermission, decimal.NewFromInt(1)))
	assert.Empty(t, repo.balances)
}

package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
)

// Ledger is the balance accounting layer. Balances are decimals with
// 0.5 granularity, never rounded, compared with strict inequalities.
// Every debit has a matching credit path on rejection or deletion.
type Ledger struct {
	balances leave.BalanceRepository
}

func NewLedger(balances leave.BalanceRepository) *Ledger {
	return &Ledger{balances: balances}
}

// GetOrInit reads the employee's balance row, creating it with the
// type defaults on first access.
func (l *Ledger) GetOrInit(ctx context.Context, employeeID string) (leave.LeaveBalance, error) {
	balance, err := l.balances.GetByEmployee(ctx, employeeID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, err
	}

	created, err := l.balances.Create(ctx, leave.LeaveBalance{
		EmployeeID: employeeID,
		Casual:     leave.DefaultCasualBalance,
		Sick:       leave.DefaultSickBalance,
		LOP:        leave.DefaultLOPBalance,
	})
	if err != nil {
		// A concurrent first access may have created the row already.
		if balance, getErr := l.balances.GetByEmployee(ctx, employeeID); getErr == nil {
			return balance, nil
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to initialize leave balance: %w", err)
	}
	return created, nil
}

// EnsureSufficient validates the apply-time balance rules for a
// tracked leave type. It must run inside the same transaction as the
// eventual debit, so the check cannot go stale before the write.
func (l *Ledger) EnsureSufficient(ctx context.Context, employeeID string, leaveType leave.LeaveType, required decimal.Decimal) error {
	if !leaveType.Tracked() {
		return nil
	}

	balance, err := l.GetOrInit(ctx, employeeID)
	if err != nil {
		return err
	}

	// LOP is only open once casual leave is fully used up.
	if leaveType == leave.LeaveTypeLOP && balance.Casual.GreaterThan(decimal.Zero) {
		return leave.NewValidationError(
			"leave without pay requires casual balance to be exhausted first (casual available: %s)",
			balance.Casual,
		)
	}

	if leaveType != leave.LeaveTypeLOP {
		available := balance.Column(leaveType)
		if available.LessThan(required) {
			return leave.NewValidationError(
				"insufficient %s balance: available %s, required %s",
				leaveType, available, required,
			)
		}
	}

	return nil
}

// Debit charges the employee's balance at apply time. Never called for
// permission leave.
func (l *Ledger) Debit(ctx context.Context, employeeID string, leaveType leave.LeaveType, amount decimal.Decimal) error {
	if !leaveType.Tracked() || amount.IsZero() {
		return nil
	}
	return l.balances.Add(ctx, employeeID, leaveType, amount.Neg())
}

// Credit refunds a charge on rejection or deletion.
func (l *Ledger) Credit(ctx context.Context, employeeID string, leaveType leave.LeaveType, amount decimal.Decimal) error {
	if !leaveType.Tracked() || amount.IsZero() {
		return nil
	}
	return l.balances.Add(ctx, employeeID, leaveType, amount)
}

package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func (r *leaveBalanceRepositoryImpl) GetByEmployee(ctx context.Context, employeeID string) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	var b leave.LeaveBalance
	err := q.QueryRow(ctx, `
		SELECT id, employee_id, casual_balance, sick_balance, lop_balance, created_at, updated_at
		FROM leave_balances
		WHERE employee_id = $1
	`, employeeID).Scan(&b.ID, &b.EmployeeID, &b.Casual, &b.Sick, &b.LOP, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	if balance.ID == "" {
		balance.ID = uuid.NewString()
	}

	err := q.QueryRow(ctx, `
		INSERT INTO leave_balances (id, employee_id, casual_balance, sick_balance, lop_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, balance.ID, balance.EmployeeID, balance.Casual, balance.Sick, balance.LOP).
		Scan(&balance.CreatedAt, &balance.UpdatedAt)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to create leave balance for employee %s: %w", balance.EmployeeID, err)
	}
	return balance, nil
}

// Add applies the delta in a single statement so the arithmetic itself
// can never race: the database serializes col = col + delta per row.
func (r *leaveBalanceRepositoryImpl) Add(ctx context.Context, employeeID string, leaveType leave.LeaveType, delta decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	var column string
	switch leaveType {
	case leave.LeaveTypeCasual:
		column = "casual_balance"
	case leave.LeaveTypeSick:
		column = "sick_balance"
	case leave.LeaveTypeLOP:
		column = "lop_balance"
	default:
		return fmt.Errorf("leave type %s has no balance column", leaveType)
	}

	query := fmt.Sprintf(`
		UPDATE leave_balances
		SET %[1]s = %[1]s + $1, updated_at = NOW()
		WHERE employee_id = $2
	`, column)

	tag, err := q.Exec(ctx, query, delta, employeeID)
	if err != nil {
		return fmt.Errorf("failed to adjust %s for employee %s: %w", column, employeeID, err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrBalanceNotFound
	}
	return nil
}

package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
)

type leaveRuleRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRuleRepository(db *database.DB) leave.RuleRepository {
	return &leaveRuleRepositoryImpl{db: db}
}

func (r *leaveRuleRepositoryImpl) ListActive(ctx context.Context) ([]leave.LeaveRule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, min_days, max_days, notice_days, is_active
		FROM leave_rules
		WHERE is_active = true
		ORDER BY min_days ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []leave.LeaveRule
	for rows.Next() {
		var rule leave.LeaveRule
		if err := rows.Scan(&rule.ID, &rule.MinDays, &rule.MaxDays, &rule.NoticeDays, &rule.IsActive); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *leaveRuleRepositoryImpl) GetForDayCount(ctx context.Context, days decimal.Decimal) (leave.LeaveRule, error) {
	q := GetQuerier(ctx, r.db)

	var rule leave.LeaveRule
	err := q.QueryRow(ctx, `
		SELECT id, min_days, max_days, notice_days, is_active
		FROM leave_rules
		WHERE is_active = true AND min_days <= $1 AND max_days >= $1
		ORDER BY min_days ASC
		LIMIT 1
	`, days).Scan(&rule.ID, &rule.MinDays, &rule.MaxDays, &rule.NoticeDays, &rule.IsActive)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRule{}, leave.ErrRuleNotFound
		}
		return leave.LeaveRule{}, err
	}
	return rule, nil
}

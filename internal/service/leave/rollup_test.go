package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
)

func days(statuses ...leave.DayStatus) []leave.LeaveDay {
	out := make([]leave.LeaveDay, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, leave.LeaveDay{Status: s})
	}
	return out
}

func TestRollUp(t *testing.T) {
	tests := []struct {
		name     string
		days     []leave.LeaveDay
		expected leave.RequestStatus
	}{
		{
			name:     "all approved",
			days:     days(leave.DayStatusApproved, leave.DayStatusApproved),
			expected: leave.RequestStatusApproved,
		},
		{
			name:     "all rejected",
			days:     days(leave.DayStatusRejected, leave.DayStatusRejected),
			expected: leave.RequestStatusRejected,
		},
		{
			name:     "approved and pending",
			days:     days(leave.DayStatusApproved, leave.DayStatusPending),
			expected: leave.RequestStatusPartiallyApproved,
		},
		{
			name:     "approved and rejected",
			days:     days(leave.DayStatusApproved, leave.DayStatusRejected),
			expected: leave.RequestStatusPartiallyApproved,
		},
		{
			name:     "all pending",
			days:     days(leave.DayStatusPending, leave.DayStatusPending),
			expected: leave.RequestStatusPending,
		},
		{
			name:     "rejected and pending stays pending",
			days:     days(leave.DayStatusRejected, leave.DayStatusPending),
			expected: leave.RequestStatusPending,
		},
		{
			name:     "no days",
			days:     nil,
			expected: leave.RequestStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RollUp(tt.days))
		})
	}
}

package leave

import "github.com/worknest/intranet-backend-go/internal/domain/leave"

// RollUp derives the aggregate request status from its day statuses.
// The request status is never stored independently of this function:
// it is recomputed inside the same transaction after every day
// mutation.
//
//	all approved            -> approved
//	all rejected            -> rejected
//	any approved + any other -> partially_approved
//	otherwise               -> pending
func RollUp(days []leave.LeaveDay) leave.RequestStatus {
	if len(days) == 0 {
		return leave.RequestStatusPending
	}

	var approved, rejected int
	for _, d := range days {
		switch d.Status {
		case leave.DayStatusApproved:
			approved++
		case leave.DayStatusRejected:
			rejected++
		}
	}

	switch {
	case approved == len(days):
		return leave.RequestStatusApproved
	case rejected == len(days):
		return leave.RequestStatusRejected
	case approved > 0:
		return leave.RequestStatusPartiallyApproved
	default:
		return leave.RequestStatusPending
	}
}

package leave

import "context"

// Service is the leave lifecycle engine consumed by the HTTP handlers.
type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	Edit(ctx context.Context, req EditLeaveRequest) (LeaveRequestResponse, error)
	Delete(ctx context.Context, employeeID, requestID string) error

	ListMine(ctx context.Context, employeeID string) ([]LeaveRequestResponse, error)
	ListPendingForApprover(ctx context.Context, approverID string) ([]LeaveRequestResponse, error)
	Get(ctx context.Context, callerID, requestID string) (LeaveRequestResponse, error)

	ApproveRequest(ctx context.Context, approverID, requestID string, req DecisionRequest) (LeaveRequestResponse, error)
	RejectRequest(ctx context.Context, approverID, requestID string, req DecisionRequest) (LeaveRequestResponse, error)
	ApproveDay(ctx context.Context, approverID, requestID, dayID string, req DecisionRequest) (LeaveRequestResponse, error)
	RejectDay(ctx context.Context, approverID, requestID, dayID string, req DecisionRequest) (LeaveRequestResponse, error)

	GetBalances(ctx context.Context, employeeID string) (BalanceResponse, error)
	GetHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
	GetRules(ctx context.Context) ([]LeaveRuleResponse, error)
	ConvertLOPToCasual(ctx context.Context, actorID, requestID string) (LeaveRequestResponse, error)
}

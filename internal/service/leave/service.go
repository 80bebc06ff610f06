package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
	"github.com/worknest/intranet-backend-go/internal/repository/postgresql"
)

// Dispatcher is the notification fan-out consumed by the engine. All
// methods are best-effort: implementations log failures and never
// return them, so leave-state mutations succeed or fail independently
// of notification delivery.
type Dispatcher interface {
	LeaveApplied(ctx context.Context, applicant user.User, request leave.LeaveRequest)
	LeaveDecision(ctx context.Context, applicant user.User, request leave.LeaveRequest, approver user.User, action leave.DayStatus, comment string)
	LeaveEdited(ctx context.Context, applicant user.User, request leave.LeaveRequest)
	LeaveDeleted(ctx context.Context, applicant user.User, request leave.LeaveRequest)
	LeaveConverted(ctx context.Context, applicant user.User, request leave.LeaveRequest)
}

type LeaveService struct {
	db         *database.DB
	users      user.Repository
	requests   leave.RequestRepository
	days       leave.DayRepository
	holidays   leave.HolidayRepository
	rules      leave.RuleRepository
	ledger     *Ledger
	calendar   *Calendar
	dispatcher Dispatcher

	defaultNoticeDays int
}

func NewLeaveService(
	db *database.DB,
	users user.Repository,
	requests leave.RequestRepository,
	days leave.DayRepository,
	holidays leave.HolidayRepository,
	rules leave.RuleRepository,
	ledger *Ledger,
	calendar *Calendar,
	dispatcher Dispatcher,
	defaultNoticeDays int,
) leave.Service {
	return &LeaveService{
		db:                db,
		users:             users,
		requests:          requests,
		days:              days,
		holidays:          holidays,
		rules:             rules,
		ledger:            ledger,
		calendar:          calendar,
		dispatcher:        dispatcher,
		defaultNoticeDays: defaultNoticeDays,
	}
}

const dateLayout = "2006-01-02"

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// planWindow hydrates holidays for the spanned years and runs the
// calculator.
func (s *LeaveService) planWindow(ctx context.Context, start, end time.Time, startPortion, endPortion leave.DayPortion, leaveType leave.LeaveType) (DayPlan, error) {
	dates, err := s.holidays.ActiveDatesForYears(ctx, YearsSpanned(start, end))
	if err != nil {
		return DayPlan{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	plan := s.calendar.Plan(start, end, startPortion, endPortion, leaveType, HolidaySet(dates))
	if plan.Total.IsZero() {
		return DayPlan{}, leave.NewValidationError("selected range contains no chargeable days")
	}
	return plan, nil
}

// validateNotice enforces the notice-period policy before any mutation.
// Casual and LOP follow the leave_rules bands; sick permits same-day;
// permission must not be backdated.
func (s *LeaveService) validateNotice(ctx context.Context, leaveType leave.LeaveType, start time.Time, totalDays decimal.Decimal) error {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	if startDay.Before(today()) {
		return leave.NewValidationError("start date cannot be in the past")
	}

	if leaveType != leave.LeaveTypeCasual && leaveType != leave.LeaveTypeLOP {
		return nil
	}

	noticeDays := s.defaultNoticeDays
	rule, err := s.rules.GetForDayCount(ctx, totalDays)
	switch {
	case err == nil:
		noticeDays = rule.NoticeDays
	case err == leave.ErrRuleNotFound:
		// fall back to the configured default
	default:
		return fmt.Errorf("failed to load leave rules: %w", err)
	}

	earliest := today().AddDate(0, 0, noticeDays)
	if startDay.Before(earliest) {
		return leave.NewValidationError("%s leave requires at least %d days notice", leaveType, noticeDays)
	}
	return nil
}

func (s *LeaveService) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	applicant, err := s.users.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType := leave.LeaveType(req.LeaveType)
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	startPortion := leave.DayPortion(req.StartPortion)
	endPortion := leave.DayPortion(req.EndPortion)

	plan, err := s.planWindow(ctx, start, end, startPortion, endPortion, leaveType)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := s.validateNotice(ctx, leaveType, start, plan.Total); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var created leave.LeaveRequest
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		// Balance eligibility is re-checked inside the transaction so it
		// cannot go stale between the check and the debit.
		if err := s.ledger.EnsureSufficient(txCtx, applicant.ID, leaveType, plan.Total); err != nil {
			return err
		}

		created, err = s.requests.Create(txCtx, leave.LeaveRequest{
			EmployeeID:   applicant.ID,
			LeaveType:    leaveType,
			StartDate:    start,
			EndDate:      end,
			StartPortion: startPortion,
			EndPortion:   endPortion,
			Reason:       req.Reason,
			NoOfDays:     plan.Total,
			Status:       leave.RequestStatusPending,
		})
		if err != nil {
			return err
		}

		days := make([]leave.LeaveDay, 0, len(plan.Days))
		for _, d := range plan.Days {
			days = append(days, leave.LeaveDay{
				RequestID: created.ID,
				Date:      d.Date,
				DayType:   d.Portion,
				Status:    leave.DayStatusPending,
			})
		}
		if err := s.days.CreateBatch(txCtx, days); err != nil {
			return err
		}
		created.Days = days

		return s.ledger.Debit(txCtx, applicant.ID, leaveType, plan.Total)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	created.EmployeeName = &applicant.FullName
	s.dispatcher.LeaveApplied(ctx, applicant, created)

	return created.ToResponse(), nil
}

// outstandingCharge sums the charges of days not yet rejected.
// Rejected days have already been refunded, so they stay out of any
// further credit to keep the accounting reversible, never doubled.
func outstandingCharge(days []leave.LeaveDay) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		if d.Status != leave.DayStatusRejected {
			total = total.Add(d.Charge())
		}
	}
	return total
}

func (s *LeaveService) Edit(ctx context.Context, req leave.EditLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.EmployeeID != req.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrNotOwner
	}
	if request.Status != leave.RequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.NewValidationError("only pending requests can be edited")
	}

	applicant, err := s.users.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	startPortion := leave.DayPortion(req.StartPortion)
	endPortion := leave.DayPortion(req.EndPortion)

	plan, err := s.planWindow(ctx, start, end, startPortion, endPortion, request.LeaveType)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := s.validateNotice(ctx, request.LeaveType, start, plan.Total); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		oldDays, err := s.days.ListByRequest(txCtx, request.ID)
		if err != nil {
			return err
		}

		// Give back the old charge, then re-check and re-debit the new
		// one. A failed check rolls the credit back with everything else.
		if err := s.ledger.Credit(txCtx, applicant.ID, request.LeaveType, outstandingCharge(oldDays)); err != nil {
			return err
		}
		if err := s.ledger.EnsureSufficient(txCtx, applicant.ID, request.LeaveType, plan.Total); err != nil {
			return err
		}

		if err := s.days.DeleteByRequest(txCtx, request.ID); err != nil {
			return err
		}

		days := make([]leave.LeaveDay, 0, len(plan.Days))
		for _, d := range plan.Days {
			days = append(days, leave.LeaveDay{
				RequestID: request.ID,
				Date:      d.Date,
				DayType:   d.Portion,
				Status:    leave.DayStatusPending,
			})
		}
		if err := s.days.CreateBatch(txCtx, days); err != nil {
			return err
		}

		if err := s.requests.RewriteWindow(txCtx, request.ID, start, end, startPortion, endPortion, req.Reason, plan.Total); err != nil {
			return err
		}

		return s.ledger.Debit(txCtx, applicant.ID, request.LeaveType, plan.Total)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	updated, err := s.loadWithDays(ctx, request.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.dispatcher.LeaveEdited(ctx, applicant, updated)
	return updated.ToResponse(), nil
}

func (s *LeaveService) Delete(ctx context.Context, employeeID, requestID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.EmployeeID != employeeID {
		return leave.ErrNotOwner
	}
	if request.Status != leave.RequestStatusPending {
		return leave.NewValidationError("only pending requests can be deleted")
	}

	applicant, err := s.users.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		days, err := s.days.ListByRequest(txCtx, request.ID)
		if err != nil {
			return err
		}
		if err := s.ledger.Credit(txCtx, applicant.ID, request.LeaveType, outstandingCharge(days)); err != nil {
			return err
		}
		if err := s.days.DeleteByRequest(txCtx, request.ID); err != nil {
			return err
		}
		return s.requests.Delete(txCtx, request.ID)
	})
	if err != nil {
		return err
	}

	s.dispatcher.LeaveDeleted(ctx, applicant, request)
	return nil
}

func (s *LeaveService) loadWithDays(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	days, err := s.days.ListByRequest(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	request.Days = days
	return request, nil
}

func (s *LeaveService) ListMine(ctx context.Context, employeeID string) ([]leave.LeaveRequestResponse, error) {
	requests, err := s.requests.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}
	return responses, nil
}

func (s *LeaveService) ListPendingForApprover(ctx context.Context, approverID string) ([]leave.LeaveRequestResponse, error) {
	actor, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return nil, err
	}
	approver, err := NewApprover(actor)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.ListPendingForApprover(ctx, approver.Scope())
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}
	return responses, nil
}

func (s *LeaveService) Get(ctx context.Context, callerID, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := s.loadWithDays(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if request.EmployeeID != callerID {
		caller, err := s.users.GetByID(ctx, callerID)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		applicant, err := s.users.GetByID(ctx, request.EmployeeID)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		approver, err := NewApprover(caller)
		if err != nil || !approver.CanActOn(applicant) {
			return leave.LeaveRequestResponse{}, leave.ErrRequestNotFound
		}
	}

	return request.ToResponse(), nil
}

// decision carries one approval/rejection action through the shared
// workflow path.
type decision struct {
	action  leave.DayStatus
	comment string
	dayID   string // empty means act on every pending day
}

func (s *LeaveService) ApproveRequest(ctx context.Context, approverID, requestID string, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, approverID, requestID, decision{action: leave.DayStatusApproved, comment: req.Comment})
}

func (s *LeaveService) RejectRequest(ctx context.Context, approverID, requestID string, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, approverID, requestID, decision{action: leave.DayStatusRejected, comment: req.Comment})
}

func (s *LeaveService) ApproveDay(ctx context.Context, approverID, requestID, dayID string, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, approverID, requestID, decision{action: leave.DayStatusApproved, comment: req.Comment, dayID: dayID})
}

func (s *LeaveService) RejectDay(ctx context.Context, approverID, requestID, dayID string, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, approverID, requestID, decision{action: leave.DayStatusRejected, comment: req.Comment, dayID: dayID})
}

func (s *LeaveService) decide(ctx context.Context, approverID, requestID string, d decision) (leave.LeaveRequestResponse, error) {
	actor, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	approver, err := NewApprover(actor)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.loadWithDays(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.EmployeeID == actor.ID {
		return leave.LeaveRequestResponse{}, leave.ErrSelfApproval
	}
	if d.dayID == "" && request.Status == leave.RequestStatusApproved {
		return leave.LeaveRequestResponse{}, leave.ErrAlreadyFinalized
	}

	applicant, err := s.users.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !approver.CanActOn(applicant) {
		return leave.LeaveRequestResponse{}, leave.ErrNotAuthorized
	}

	var pendingCount int
	for _, day := range request.Days {
		if day.Status == leave.DayStatusPending {
			pendingCount++
		}
	}

	// Idempotent no-ops happen outside the transaction: re-approving an
	// approved day changes nothing; re-rejecting a rejected day must not
	// produce a second refund.
	if d.dayID != "" {
		day, err := s.days.GetByID(ctx, d.dayID)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		if day.RequestID != request.ID {
			return leave.LeaveRequestResponse{}, leave.ErrDayNotFound
		}
		if day.Status == d.action {
			return request.ToResponse(), nil
		}
		if day.Status != leave.DayStatusPending {
			return leave.LeaveRequestResponse{}, leave.ErrDayAlreadyProcessed
		}
	} else if pendingCount == 0 {
		return leave.LeaveRequestResponse{}, leave.NewValidationError("no pending days left to act on")
	}

	now := time.Now()
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		refund := decimal.Zero

		if d.dayID != "" {
			affected, err := s.days.TransitionDay(txCtx, d.dayID, d.action, approver.Scope())
			if err != nil {
				return err
			}
			// The guard re-checks the reporting relationship inside the
			// UPDATE itself; zero rows means the pre-check went stale.
			if affected == 0 {
				return leave.ErrNotAuthorized
			}
			if d.action == leave.DayStatusRejected {
				day, err := s.days.GetByID(txCtx, d.dayID)
				if err != nil {
					return err
				}
				refund = day.Charge()
			}
		} else {
			transitioned, err := s.days.TransitionAllPending(txCtx, request.ID, d.action, approver.Scope())
			if err != nil {
				return err
			}
			if len(transitioned) == 0 {
				return leave.ErrNotAuthorized
			}
			if d.action == leave.DayStatusRejected {
				for _, day := range transitioned {
					refund = refund.Add(day.Charge())
				}
			}
		}

		if refund.GreaterThan(decimal.Zero) {
			if err := s.ledger.Credit(txCtx, applicant.ID, request.LeaveType, refund); err != nil {
				return err
			}
		}

		action := d.action
		comment := d.comment
		mark := leave.ApprovalMark{
			Status:  &action,
			ActedAt: &now,
			Comment: &comment,
			ActorID: &actor.ID,
		}
		if err := s.requests.RecordApproval(txCtx, request.ID, actor.Role, mark); err != nil {
			return err
		}

		// Roll-up runs in the same transaction as the day mutation, so
		// the stored aggregate can never drift from the day states.
		days, err := s.days.ListByRequest(txCtx, request.ID)
		if err != nil {
			return err
		}
		return s.requests.UpdateStatus(txCtx, request.ID, RollUp(days))
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	updated, err := s.loadWithDays(ctx, request.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.dispatcher.LeaveDecision(ctx, applicant, updated, actor, d.action, d.comment)
	return updated.ToResponse(), nil
}

func (s *LeaveService) GetBalances(ctx context.Context, employeeID string) (leave.BalanceResponse, error) {
	balance, err := s.ledger.GetOrInit(ctx, employeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return leave.BalanceResponse{
		EmployeeID: balance.EmployeeID,
		Casual:     balance.Casual,
		Sick:       balance.Sick,
		LOP:        balance.LOP,
	}, nil
}

func (s *LeaveService) GetHolidays(ctx context.Context, year int) ([]leave.HolidayResponse, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	holidays, err := s.holidays.ListActive(ctx, year)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, leave.HolidayResponse{
			ID:   h.ID,
			Date: h.Date.Format(dateLayout),
			Name: h.Name,
		})
	}
	return responses, nil
}

func (s *LeaveService) GetRules(ctx context.Context) ([]leave.LeaveRuleResponse, error) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.LeaveRuleResponse, 0, len(rules))
	for _, r := range rules {
		responses = append(responses, leave.LeaveRuleResponse{
			ID:         r.ID,
			MinDays:    r.MinDays,
			MaxDays:    r.MaxDays,
			NoticeDays: r.NoticeDays,
		})
	}
	return responses, nil
}

// ConvertLOPToCasual retags an LOP request as casual and moves its
// charge between the balance columns in one transaction. HR and
// super-admin only.
func (s *LeaveService) ConvertLOPToCasual(ctx context.Context, actorID, requestID string) (leave.LeaveRequestResponse, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if actor.Role != user.RoleHR && actor.Role != user.RoleSuperAdmin {
		return leave.LeaveRequestResponse{}, leave.ErrNotAuthorized
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.LeaveType != leave.LeaveTypeLOP {
		return leave.LeaveRequestResponse{}, leave.NewValidationError("only leave-without-pay requests can be converted to casual")
	}

	applicant, err := s.users.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if _, err := s.ledger.GetOrInit(txCtx, applicant.ID); err != nil {
			return err
		}
		if err := s.ledger.Credit(txCtx, applicant.ID, leave.LeaveTypeLOP, request.NoOfDays); err != nil {
			return err
		}
		if err := s.ledger.Debit(txCtx, applicant.ID, leave.LeaveTypeCasual, request.NoOfDays); err != nil {
			return err
		}
		return s.requests.UpdateLeaveType(txCtx, request.ID, leave.LeaveTypeCasual)
	})
	if err != nil {
		slog.Error("LOP conversion failed", "request_id", request.ID, "actor_id", actor.ID, "error", err)
		return leave.LeaveRequestResponse{}, err
	}

	updated, err := s.loadWithDays(ctx, request.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	s.dispatcher.LeaveConverted(ctx, applicant, updated)
	return updated.ToResponse(), nil
}

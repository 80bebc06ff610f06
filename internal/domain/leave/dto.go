package leave

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/pkg/validator"
)

// ApplyLeaveRequest is the payload for creating a leave request.
type ApplyLeaveRequest struct {
	EmployeeID   string `json:"-"` // set from JWT, never from the body
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	StartPortion string `json:"start_portion"`
	EndPortion   string `json:"end_portion"`
	Reason       string `json:"reason"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !LeaveType(r.LeaveType).Valid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "must be one of casual, sick, lop, permission"})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}

	if r.StartPortion == "" {
		r.StartPortion = string(DayPortionFull)
	}
	if r.EndPortion == "" {
		r.EndPortion = string(DayPortionFull)
	}
	if !DayPortion(r.StartPortion).Valid() {
		errs = append(errs, validator.ValidationError{Field: "start_portion", Message: "must be full or half"})
	}
	if !DayPortion(r.EndPortion).Valid() {
		errs = append(errs, validator.ValidationError{Field: "end_portion", Message: "must be full or half"})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	// Permission is a same-day absence; it never spans dates.
	if LeaveType(r.LeaveType) == LeaveTypePermission && startOK && endOK && !start.Equal(end) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "permission leave must be a single day"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EditLeaveRequest is the payload for rewriting a pending request.
// Leave type is fixed at apply time; only the window, portions and
// reason can change.
type EditLeaveRequest struct {
	RequestID    string `json:"-"`
	EmployeeID   string `json:"-"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	StartPortion string `json:"start_portion"`
	EndPortion   string `json:"end_portion"`
	Reason       string `json:"reason"`
}

func (r *EditLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}

	if r.StartPortion == "" {
		r.StartPortion = string(DayPortionFull)
	}
	if r.EndPortion == "" {
		r.EndPortion = string(DayPortionFull)
	}
	if !DayPortion(r.StartPortion).Valid() {
		errs = append(errs, validator.ValidationError{Field: "start_portion", Message: "must be full or half"})
	}
	if !DayPortion(r.EndPortion).Valid() {
		errs = append(errs, validator.ValidationError{Field: "end_portion", Message: "must be full or half"})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DecisionRequest is the payload for approve/reject actions.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

// LeaveDayResponse is the wire shape of a single chargeable day.
type LeaveDayResponse struct {
	ID      string          `json:"id"`
	Date    string          `json:"date"`
	DayType DayPortion      `json:"day_type"`
	Status  DayStatus       `json:"status"`
	Charge  decimal.Decimal `json:"charge"`
}

// ApprovalMarkResponse is the wire shape of a per-role approval mark.
type ApprovalMarkResponse struct {
	Status  *DayStatus `json:"status,omitempty"`
	ActedAt *time.Time `json:"acted_at,omitempty"`
	Comment *string    `json:"comment,omitempty"`
	ActorID *string    `json:"actor_id,omitempty"`
}

// LeaveRequestResponse is the wire shape of a leave request.
type LeaveRequestResponse struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employee_id"`
	EmployeeName *string         `json:"employee_name,omitempty"`
	LeaveType    LeaveType       `json:"leave_type"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	StartPortion DayPortion      `json:"start_portion"`
	EndPortion   DayPortion      `json:"end_portion"`
	Reason       string          `json:"reason"`
	NoOfDays     decimal.Decimal `json:"no_of_days"`
	Status       RequestStatus   `json:"status"`

	ManagerApproval ApprovalMarkResponse `json:"manager_approval"`
	HRApproval      ApprovalMarkResponse `json:"hr_approval"`
	AdminApproval   ApprovalMarkResponse `json:"admin_approval"`

	Days []LeaveDayResponse `json:"days,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceResponse is the wire shape of an employee's leave balances.
type BalanceResponse struct {
	EmployeeID string          `json:"employee_id"`
	Casual     decimal.Decimal `json:"casual"`
	Sick       decimal.Decimal `json:"sick"`
	LOP        decimal.Decimal `json:"lop"`
}

// HolidayResponse is the wire shape of a holiday calendar entry.
type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// LeaveRuleResponse is the wire shape of a notice rule band.
type LeaveRuleResponse struct {
	ID         string          `json:"id"`
	MinDays    decimal.Decimal `json:"min_days"`
	MaxDays    decimal.Decimal `json:"max_days"`
	NoticeDays int             `json:"notice_days"`
}

const dateLayout = "2006-01-02"

// ToResponse converts a LeaveRequest entity to its wire shape.
func (lr LeaveRequest) ToResponse() LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              lr.ID,
		EmployeeID:      lr.EmployeeID,
		EmployeeName:    lr.EmployeeName,
		LeaveType:       lr.LeaveType,
		StartDate:       lr.StartDate.Format(dateLayout),
		EndDate:         lr.EndDate.Format(dateLayout),
		StartPortion:    lr.StartPortion,
		EndPortion:      lr.EndPortion,
		Reason:          lr.Reason,
		NoOfDays:        lr.NoOfDays,
		Status:          lr.Status,
		ManagerApproval: lr.ManagerApproval.toResponse(),
		HRApproval:      lr.HRApproval.toResponse(),
		AdminApproval:   lr.AdminApproval.toResponse(),
		CreatedAt:       lr.CreatedAt,
		UpdatedAt:       lr.UpdatedAt,
	}
	for _, d := range lr.Days {
		resp.Days = append(resp.Days, LeaveDayResponse{
			ID:      d.ID,
			Date:    d.Date.Format(dateLayout),
			DayType: d.DayType,
			Status:  d.Status,
			Charge:  d.Charge(),
		})
	}
	return resp
}

func (m ApprovalMark) toResponse() ApprovalMarkResponse {
	return ApprovalMarkResponse{
		Status:  m.Status,
		ActedAt: m.ActedAt,
		Comment: m.Comment,
		ActorID: m.ActorID,
	}
}

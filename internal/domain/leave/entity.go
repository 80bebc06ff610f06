package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType maps to the leave_type enum in DB
type LeaveType string

const (
	LeaveTypeCasual     LeaveType = "casual"
	LeaveTypeSick       LeaveType = "sick"
	LeaveTypeLOP        LeaveType = "lop"
	LeaveTypePermission LeaveType = "permission"
)

// Tracked reports whether the type is charged against a balance column.
// Permission is unbounded and never touches the ledger.
func (t LeaveType) Tracked() bool {
	return t == LeaveTypeCasual || t == LeaveTypeSick || t == LeaveTypeLOP
}

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeCasual, LeaveTypeSick, LeaveTypeLOP, LeaveTypePermission:
		return true
	}
	return false
}

// DayPortion maps to the day_portion enum in DB
type DayPortion string

const (
	DayPortionFull DayPortion = "full"
	DayPortionHalf DayPortion = "half"
)

func (p DayPortion) Valid() bool {
	return p == DayPortionFull || p == DayPortionHalf
}

// Charge returns the chargeable amount for the portion: 1 or 0.5.
func (p DayPortion) Charge() decimal.Decimal {
	if p == DayPortionHalf {
		return HalfDay
	}
	return FullDay
}

type DayStatus string

const (
	DayStatusPending  DayStatus = "pending"
	DayStatusApproved DayStatus = "approved"
	DayStatusRejected DayStatus = "rejected"
)

type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"
	RequestStatusPartiallyApproved RequestStatus = "partially_approved"
	RequestStatusApproved          RequestStatus = "approved"
	RequestStatusRejected          RequestStatus = "rejected"
)

var (
	FullDay = decimal.NewFromInt(1)
	HalfDay = decimal.NewFromFloat(0.5)

	// Opening balances used when a ledger row is lazily created.
	DefaultCasualBalance = decimal.NewFromInt(12)
	DefaultSickBalance   = decimal.NewFromInt(6)
	DefaultLOPBalance    = decimal.Zero
)

// ApprovalMark holds the per-role approval sub-fields recorded on the
// request header whenever that role acts on any of its days.
type ApprovalMark struct {
	Status  *DayStatus
	ActedAt *time.Time
	Comment *string
	ActorID *string
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string

	LeaveType    LeaveType
	StartDate    time.Time
	EndDate      time.Time
	StartPortion DayPortion
	EndPortion   DayPortion

	Reason   string
	NoOfDays decimal.Decimal
	Status   RequestStatus

	ManagerApproval ApprovalMark
	HRApproval      ApprovalMark
	AdminApproval   ApprovalMark

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
	Days         []LeaveDay
}

// LeaveDay entity: one row per chargeable calendar date of a request.
type LeaveDay struct {
	ID        string
	RequestID string
	Date      time.Time
	DayType   DayPortion
	Status    DayStatus
}

// Charge returns the chargeable amount of this day.
func (d LeaveDay) Charge() decimal.Decimal {
	return d.DayType.Charge()
}

// LeaveBalance entity: per-employee balances, lazily initialized.
type LeaveBalance struct {
	ID         string
	EmployeeID string
	Casual     decimal.Decimal
	Sick       decimal.Decimal
	LOP        decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Column returns the balance for the given tracked leave type.
func (b LeaveBalance) Column(t LeaveType) decimal.Decimal {
	switch t {
	case LeaveTypeCasual:
		return b.Casual
	case LeaveTypeSick:
		return b.Sick
	case LeaveTypeLOP:
		return b.LOP
	}
	return decimal.Zero
}

// Holiday reference data, read-only to the engine.
type Holiday struct {
	ID       string
	Date     time.Time
	Name     string
	IsActive bool
}

// LeaveRule maps a day-count band to the required notice days.
type LeaveRule struct {
	ID         string
	MinDays    decimal.Decimal
	MaxDays    decimal.Decimal
	NoticeDays int
	IsActive   bool
}

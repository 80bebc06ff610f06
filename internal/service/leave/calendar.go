package leave

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
)

// PlannedDay is one chargeable calendar date of a request.
type PlannedDay struct {
	Date    time.Time
	Portion leave.DayPortion
}

// Charge returns the chargeable amount of the planned day.
func (d PlannedDay) Charge() decimal.Decimal {
	return d.Portion.Charge()
}

// DayPlan is the output of the business-day calculator: the ordered
// chargeable days and their fractional total.
type DayPlan struct {
	Days  []PlannedDay
	Total decimal.Decimal
}

// Calendar enumerates the chargeable days of a leave window. It is a
// pure function over the provided holiday dates; hydrating those dates
// for the spanned years is the caller's job.
type Calendar struct{}

func NewCalendar() *Calendar {
	return &Calendar{}
}

const dateKeyLayout = "2006-01-02"

// HolidaySet builds the lookup set Plan expects.
func HolidaySet(dates []time.Time) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d.Format(dateKeyLayout)] = true
	}
	return set
}

// YearsSpanned lists the calendar years a window touches, so holidays
// can be fetched for a request crossing a year boundary.
func YearsSpanned(start, end time.Time) []int {
	var years []int
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// Plan walks every calendar date from start to end inclusive.
//
// Leave without pay charges weekends and holidays: LOP is unpaid, so
// there is no working-day exclusion to honor. Every other type skips
// Saturday, Sunday and active holidays.
func (c *Calendar) Plan(start, end time.Time, startPortion, endPortion leave.DayPortion, leaveType leave.LeaveType, holidays map[string]bool) DayPlan {
	plan := DayPlan{Total: decimal.Zero}

	start = truncateToDay(start)
	end = truncateToDay(end)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if leaveType != leave.LeaveTypeLOP {
			if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
				continue
			}
			if holidays[date.Format(dateKeyLayout)] {
				continue
			}
		}

		portion := leave.DayPortionFull
		switch {
		case date.Equal(start) && date.Equal(end):
			// Single-day request: either half marker makes it a half day.
			if startPortion == leave.DayPortionHalf || endPortion == leave.DayPortionHalf {
				portion = leave.DayPortionHalf
			}
		case date.Equal(start):
			portion = startPortion
		case date.Equal(end):
			portion = endPortion
		}

		plan.Days = append(plan.Days, PlannedDay{Date: date, Portion: portion})
		plan.Total = plan.Total.Add(portion.Charge())
	}

	return plan
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

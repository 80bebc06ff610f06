package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worknest/intranet-backend-go/internal/domain/leave"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalendar_Plan_WeekdaysOnly(t *testing.T) {
	c := NewCalendar()

	// Monday through Wednesday
	plan := c.Plan(date(2026, time.March, 2), date(2026, time.March, 4),
		leave.DayPortionFull, leave.DayPortionFull, leave.LeaveTypeCasual, nil)

	require.Len(t, plan.Days, 3)
	assert.True(t, plan.Total.Equal(decimal.NewFromInt(3)), "total = %s", plan.Total)
	for _, d := range plan.Days {
		assert.Equal(t, leave.DayPortionFull, d.Portion)
	}
}

func TestCalendar_Plan_SkipsWeekend(t *testing.T) {
	c := NewCalendar()

	// Friday through Monday: Saturday and Sunday drop out
	plan := c.Plan(date(2026, time.March, 6), date(2026, time.March, 9),
		leave.DayPortionFull, leave.DayPortionFull, leave.LeaveTypeCasual, nil)

	require.Len(t, plan.Days, 2)
	assert.Equal(t, date(2026, time.March, 6), plan.Days[0].Date)
	assert.Equal(t, date(2026, time.March, 9), plan.Days[1].Date)
	assert.True(t, plan.Total.Equal(decimal.NewFromInt(2)))
}

func TestCalendar_Plan_LOPChargesWeekend(t *testing.T) {
	c := NewCalendar()

	// Same Friday-to-Monday window, but LOP charges every calendar day
	plan := c.Plan(date(2026, time.March, 6), date(2026, time.March, 9),
		leave.DayPortionFull, leave.DayPortionFull, leave.LeaveTypeLOP, nil)

	require.Len(t, plan.Days, 4)
	assert.True(t, plan.Total.Equal(decimal.NewFromInt(4)))
}

func TestCalendar_Plan_SkipsHoliday(t *testing.T) {
	c := NewCalendar()
	holidays := HolidaySet([]time.Time{date(2026, time.March, 3)})

	plan := c.Plan(date(2026, time.March, 2), date(2026, time.March, 4),
		leave.DayPortionFull, leave.DayPortionFull, leave.LeaveTypeCasual, holidays)

	require.Len(t, plan.Days, 2)
	assert.True(t, plan.Total.Equal(decimal.NewFromInt(2)))
}

func TestCalendar_Plan_LOPChargesHoliday(t *testing.T) {
	c := NewCalendar()
	holidays := HolidaySet([]time.Time{date(2026, time.March, 3)})

	plan := c.Plan(date(2026, time.March, 2), date(2026, time.March, 4),
		leave.DayPortionFull, leave.DayPortionFull, leave.LeaveTypeLOP, holidays)

	require.Len(t, plan.Days, 3)
	assert.True(t, plan.Total.Equal(decimal.NewFromInt(3)))
}

func TestCalendar_Plan_HalfDayPortions(t *testing.T) {
	c := NewCalendar()

	// Half Monday, full Tuesday, half Wednesday
	plan := c.Plan(date(2026, time.March, 2), date(2026, time.March, 4),
		leave.DayPortionHalf, leave.DayPortionHalf, leave.LeaveTypeCasual, nil)

	require.Len(t, plan.Days, 3)
	assert.Equal(t, leave.DayPortionHalf, plan.Days[0].Portion)
	assert.Equal(t, leave.DayPortionFull, plan.Days[1].Portion)
	assert.Equal(t, leave.DayPortionHalf, plan.Days[2].Portion)
	assert.True(t, plan.Total.Equal(decimal.NewFromInt(2)), "total = %s", plan.Total)
}

func TestCalendar_Plan_SingleDayHalf(t *testing.T) {
	c := NewCalendar()

	for _, portions := range [][2]leave.DayPortion{
		{leave.DayPortionHalf, leave.DayPortionFull},
		{leave.DayPortionFull, leave.DayPortionHalf},
		{leave.DayPortionHalf, leave.DayPortionHalf},
	} {
		plan := c.Plan(date(2026, time.March, 2), date(2026, time.March, 2),
			portions[0], portions[1], leave.LeaveTypeCasual, nil)

		require.Len(t, plan.Days, 1)
		assert.Equal(t, leave.DayPortionHalf, plan.Days[0].Portion)
		assert.True(t, plan.Total.Equal(decimal.NewFromFloat(0.5)))
	}
}

func TestCalendar_Plan_WeekendOnlyWindowIsEmpty(t *testing.T) {
	c := NewCalendar()

	plan := c.Plan(date(2026, time.March, 7), date(2026, time.March, 8),
		leave.DayPortionFull, leave.DayPortionFull, leave.LeaveTypeCasual, nil)

	assert.Empty(t, plan.Days)
	assert.True(t, plan.Total.IsZero())
}

func TestYearsSpanned_CrossYearBoundary(t *testing.T) {
	years := YearsSpanned(date(2026, time.December, 30), date(2027, time.January, 2))
	assert.Equal(t, []int{2026, 2027}, years)
}

func TestHolidaySet(t *testing.T) {
	set := HolidaySet([]time.Time{date(2026, time.January, 26), date(2026, time.August, 15)})
	assert.True(t, set["2026-01-26"])
	assert.True(t, set["2026-08-15"])
	assert.False(t, set["2026-01-01"])
}

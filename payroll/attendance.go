package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var half = decimal.RequireFromString("0.5")

// TallyAttendance counts the employee's attendance statuses within the month.
// Records for other employees or other months are ignored.
func TallyAttendance(employeeID EmployeeID, year int, month time.Month, records []AttendanceRecord) AttendanceSummary {
	var s AttendanceSummary
	period := MonthPeriod(year, month)
	for _, r := range records {
		if r.EmployeeID != employeeID || !period.Contains(r.Date) {
			continue
		}
		switch r.Status {
		case Present:
			s.Present++
		case Absent:
			s.Absent++
		case OnLeave:
			s.OnLeave++
		case Holiday:
			s.Holiday++
		case WeekOff:
			s.WeekOff++
		case HalfDayLeave:
			s.HalfDayLeave++
		case HalfDayPresentAbsent:
			s.HalfDayPresentAbsent++
		}
	}
	return s
}

// PaidDays = present + on leave + holiday + week off + half of each half-day.
func (s AttendanceSummary) PaidDays() decimal.Decimal {
	full := decimal.NewFromInt(int64(s.Present + s.OnLeave + s.Holiday + s.WeekOff))
	halves := decimal.NewFromInt(int64(s.HalfDayLeave + s.HalfDayPresentAbsent)).Mul(half)
	return full.Add(halves)
}

func (s AttendanceSummary) Total() int {
	return s.Present + s.Absent + s.OnLeave + s.Holiday + s.WeekOff + s.HalfDayLeave + s.HalfDayPresentAbsent
}

// TallyLeave counts the employee's approved leave requests per leave type.
// Each request counts once, whatever the number of days it spans.
func TallyLeave(employeeID EmployeeID, requests []LeaveRequest) LeaveSummary {
	s := LeaveSummary{}
	for _, r := range requests {
		if r.EmployeeID == employeeID && r.Status == LeaveApproved {
			s[r.LeaveType]++
		}
	}
	return s
}

func (s LeaveSummary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

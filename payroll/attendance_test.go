package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

func TestTallyAttendance_CountsOnlyEmployeeAndMonth(t *testing.T) {
	// GIVEN: March records for two employees plus an April record
	records := days("emp-1", 2024, time.March, 1, 10, payroll.Present)
	records = append(records, days("emp-1", 2024, time.March, 11, 12, payroll.Absent)...)
	records = append(records, days("emp-1", 2024, time.March, 13, 13, payroll.HalfDayLeave)...)
	records = append(records, days("emp-1", 2024, time.March, 14, 14, payroll.HalfDayPresentAbsent)...)
	records = append(records, days("emp-1", 2024, time.March, 15, 16, payroll.WeekOff)...)
	records = append(records, days("emp-1", 2024, time.March, 17, 17, payroll.Holiday)...)
	records = append(records, days("emp-1", 2024, time.March, 18, 19, payroll.OnLeave)...)
	records = append(records, days("emp-2", 2024, time.March, 1, 31, payroll.Present)...)
	records = append(records, days("emp-1", 2024, time.April, 1, 1, payroll.Present)...)

	// WHEN: Tallying March for emp-1
	s := payroll.TallyAttendance("emp-1", 2024, time.March, records)

	// THEN: Only emp-1's March records count
	assert.Equal(t, payroll.AttendanceSummary{
		Present:              10,
		Absent:               2,
		OnLeave:              2,
		Holiday:              1,
		WeekOff:              2,
		HalfDayLeave:         1,
		HalfDayPresentAbsent: 1,
	}, s)
	assert.Equal(t, 19, s.Total())

	// 10 + 2 + 1 + 2 + 0.5 + 0.5
	assertDecimal(t, "16", s.PaidDays())
}

func TestTallyAttendance_UnknownStatusIgnored(t *testing.T) {
	records := []payroll.AttendanceRecord{
		{EmployeeID: "emp-1", Date: payroll.NewDate(2024, time.March, 1), Status: "WorkFromMoon"},
	}
	s := payroll.TallyAttendance("emp-1", 2024, time.March, records)
	assert.Equal(t, 0, s.Total())
}

func TestTallyLeave_EachApprovedRequestCountsOnce(t *testing.T) {
	// GIVEN: A 5-day approved sick leave, a 1-day approved sick leave,
	// a pending casual leave and an approved leave for someone else
	requests := []payroll.LeaveRequest{
		{ID: "l1", EmployeeID: "emp-1", LeaveType: "Sick", StartDate: payroll.NewDate(2024, time.March, 4), EndDate: payroll.NewDate(2024, time.March, 8), Status: payroll.LeaveApproved},
		{ID: "l2", EmployeeID: "emp-1", LeaveType: "Sick", StartDate: payroll.NewDate(2024, time.March, 20), EndDate: payroll.NewDate(2024, time.March, 20), Status: payroll.LeaveApproved},
		{ID: "l3", EmployeeID: "emp-1", LeaveType: "Casual", StartDate: payroll.NewDate(2024, time.March, 25), EndDate: payroll.NewDate(2024, time.March, 25), Status: payroll.LeavePending},
		{ID: "l4", EmployeeID: "emp-2", LeaveType: "Sick", StartDate: payroll.NewDate(2024, time.March, 4), EndDate: payroll.NewDate(2024, time.March, 4), Status: payroll.LeaveApproved},
	}

	// WHEN: Tallying emp-1
	s := payroll.TallyLeave("emp-1", requests)

	// THEN: Two Sick requests, regardless of their length
	assert.Equal(t, payroll.LeaveSummary{"Sick": 2}, s)
	assert.Equal(t, 2, s.Total())
}

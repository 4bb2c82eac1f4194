package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve), "expected validation errors, got %v", err)
	return ve.ToMap()
}

func strPtr(s string) *string { return &s }

func TestCheckInRequest_Validate(t *testing.T) {
	req := CheckInRequest{LocationKind: "remote", Method: "mobile"}
	assert.NoError(t, req.Validate())

	req = CheckInRequest{LocationKind: "moon"}
	m := fieldErrors(t, req.Validate())
	assert.Contains(t, m, "location_kind")
}

func TestCheckInRequest_CheckInfoDefaults(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	req := CheckInRequest{SourceIP: "10.0.0.1", UserAgent: "curl/8"}

	info := req.CheckInfo(at)

	assert.Equal(t, LocationOffice, info.LocationKind)
	assert.Equal(t, MethodWeb, info.Method)
	require.NotNil(t, info.SourceIP)
	assert.Equal(t, "10.0.0.1", *info.SourceIP)
	require.NotNil(t, info.DeviceInfo)
	assert.Equal(t, "curl/8", *info.DeviceInfo)

	req.DeviceInfo = strPtr("kiosk-7")
	info = req.CheckInfo(at)
	assert.Equal(t, "kiosk-7", *info.DeviceInfo)
}

func TestCreateCorrectionRequest_Validate(t *testing.T) {
	req := CreateCorrectionRequest{Date: "2024-01-05", Reason: "forgot", CorrectCheckOutTime: strPtr("17:10")}
	assert.NoError(t, req.Validate())

	req = CreateCorrectionRequest{Date: "2024-01-05", Reason: "forgot", CorrectCheckInTime: strPtr("2024-01-05T09:00:00+05:00")}
	assert.NoError(t, req.Validate())

	m := fieldErrors(t, (&CreateCorrectionRequest{Date: "05/01/2024"}).Validate())
	assert.Contains(t, m, "date")
	assert.Contains(t, m, "reason")
	assert.Contains(t, m, "correct_check_in_time")

	m = fieldErrors(t, (&CreateCorrectionRequest{Date: "2024-01-05", Reason: "x", CorrectCheckOutTime: strPtr("5pm")}).Validate())
	assert.Contains(t, m, "correct_check_out_time")
}

func TestResolveCorrectionTime(t *testing.T) {
	key, err := plus5.ParseDay("2024-01-05")
	require.NoError(t, err)

	got, err := ResolveCorrectionTime("17:10", key)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 10, 0, 0, time.UTC), got)

	got, err = ResolveCorrectionTime("2024-01-05T09:00:00+05:00", key)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 4, 0, 0, 0, time.UTC), got)
}

func TestRejectRequests_RequireNotes(t *testing.T) {
	m := fieldErrors(t, (&RejectCorrectionRequest{ID: "a"}).Validate())
	assert.Equal(t, "admin_notes is required when rejecting", m["admin_notes"])

	m = fieldErrors(t, (&RejectLeaveRequest{ID: "a", AdminNotes: "  "}).Validate())
	assert.Contains(t, m, "admin_notes")

	assert.NoError(t, (&RejectLeaveRequest{ID: "a", AdminNotes: "no cover"}).Validate())
}

func TestCreateLeaveRequest_Validate(t *testing.T) {
	req := CreateLeaveRequest{StartDate: "2024-01-01", EndDate: "2024-01-03", LeaveType: "annual", Reason: "trip"}
	assert.NoError(t, req.Validate())

	req.EndDate = "2023-12-31"
	m := fieldErrors(t, req.Validate())
	assert.Equal(t, "end_date must not be before start_date", m["end_date"])

	req.EndDate = "2024-06-01"
	m = fieldErrors(t, req.Validate())
	assert.Contains(t, m, "end_date")

	m = fieldErrors(t, (&CreateLeaveRequest{StartDate: "2024-01-01", EndDate: "2024-01-01", LeaveType: "vacation", Reason: "x"}).Validate())
	assert.Contains(t, m, "leave_type")
}

func TestAttendanceFilter_Defaults(t *testing.T) {
	f := AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "date", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)

	f = AttendanceFilter{Status: strPtr("sleeping"), StartDate: strPtr("2024-02-01"), EndDate: strPtr("2024-01-01")}
	m := fieldErrors(t, f.Validate())
	assert.Contains(t, m, "status")
	assert.Contains(t, m, "end_date")
}

func TestNewAttendanceResponse(t *testing.T) {
	key, err := plus5.ParseDay("2024-01-05")
	require.NoError(t, err)
	in := plus5.At(key, 9, 10, 0)
	prev := StatusPresent

	resp := NewAttendanceResponse(Attendance{
		ID:           "id-1",
		EmployeeID:   "emp-1",
		DayKey:       key,
		CheckIn:      &CheckInfo{Time: in, LocationKind: LocationOffice, Method: MethodWeb},
		Status:       StatusLeave,
		LeaveRequest: &LeaveRequest{LeaveType: LeaveSick, Status: RequestPending, RequestedAt: in, PreviousStatus: &prev},
	}, plus5)

	assert.Equal(t, "2024-01-05", resp.Date)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, "2024-01-05T09:10:00+05:00", resp.CheckIn.Time)
	assert.Equal(t, "leave", resp.Status)
	require.NotNil(t, resp.LeaveRequest)
	assert.Equal(t, "present", *resp.LeaveRequest.PreviousStatus)
	assert.NotNil(t, resp.Breaks)
}

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/middleware"
	"github.com/stretchr/testify/assert"
)

func serveAs(h func(http.Handler) http.Handler, caller *user.Caller) int {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if caller != nil {
		req = req.WithContext(user.WithCaller(req.Context(), *caller))
	}
	rec := httptest.NewRecorder()
	h(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestRoleGuards(t *testing.T) {
	employee := &user.Caller{UserID: "user-1", Role: user.RoleEmployee}
	supervisor := &user.Caller{UserID: "user-2", Role: user.RoleSupervisor}
	admin := &user.Caller{UserID: "user-3", Role: user.RoleAdmin}

	tests := []struct {
		name   string
		guard  func(http.Handler) http.Handler
		caller *user.Caller
		want   int
	}{
		{"no caller", middleware.RequireSupervisor, nil, http.StatusUnauthorized},
		{"employee on supervisor route", middleware.RequireSupervisor, employee, http.StatusForbidden},
		{"supervisor on supervisor route", middleware.RequireSupervisor, supervisor, http.StatusNoContent},
		{"admin on supervisor route", middleware.RequireSupervisor, admin, http.StatusNoContent},
		{"supervisor on admin route", middleware.RequireAdmin, supervisor, http.StatusForbidden},
		{"admin on admin route", middleware.RequireAdmin, admin, http.StatusNoContent},
		{"employee may check in", middleware.RequirePermission(user.PermissionAttendanceCreate), employee, http.StatusNoContent},
		{"employee may not approve leave", middleware.RequirePermission(user.PermissionLeaveApprove), employee, http.StatusForbidden},
		{"supervisor may not delete records", middleware.RequirePermission(user.PermissionAttendanceDelete), supervisor, http.StatusForbidden},
		{"admin may delete records", middleware.RequirePermission(user.PermissionAttendanceDelete), admin, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serveAs(tt.guard, tt.caller))
		})
	}
}

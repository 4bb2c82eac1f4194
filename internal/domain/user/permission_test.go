package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleEmployee, PermissionAttendanceCreate))
	assert.False(t, HasPermission(RoleEmployee, PermissionCorrectionApprove))
	assert.True(t, HasPermission(RoleSupervisor, PermissionLeaveApprove))
	assert.False(t, HasPermission(RoleSupervisor, PermissionAttendanceDelete))
	assert.True(t, HasPermission(RoleAdmin, PermissionAttendanceDelete))
	assert.False(t, HasPermission(Role("pending"), PermissionAttendanceViewOwn))
}

func TestCallerContext(t *testing.T) {
	_, err := CallerFromContext(context.Background())
	assert.ErrorIs(t, err, ErrCallerMissing)

	empID := "emp-1"
	ctx := WithCaller(context.Background(), Caller{UserID: "u-1", EmployeeID: &empID, Role: RoleSupervisor})

	c, err := CallerFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.True(t, c.IsSupervisor())
	assert.False(t, c.IsAdmin())
}

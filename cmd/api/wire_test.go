package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectorySeed(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "employees.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "emp-1", "user_id": "user-1", "employee_code": "E001", "full_name": "Ayu Lestari"},
		{"id": "emp-2", "employee_code": "E002", "full_name": "Budi Santoso", "employment_status": "inactive"}
	]`), 0o600))

	// Act
	employees, err := loadDirectorySeed(path)

	// Assert
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, employee.EmploymentStatusActive, employees[0].EmploymentStatus)
	require.NotNil(t, employees[0].UserID)
	assert.Equal(t, "user-1", *employees[0].UserID)
	assert.Equal(t, employee.EmploymentStatusInactive, employees[1].EmploymentStatus)
}

func TestLoadDirectorySeed_Empty(t *testing.T) {
	employees, err := loadDirectorySeed("")
	require.NoError(t, err)
	assert.Empty(t, employees)

	_, err = loadDirectorySeed(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

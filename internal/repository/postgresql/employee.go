package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const employeeColumns = `id, user_id, employee_code, full_name, email, position, employment_status, created_at, updated_at`

type employeeDirectory struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	var status string
	err := row.Scan(&e.ID, &e.UserID, &e.EmployeeCode, &e.FullName, &e.Email, &e.Position, &status, &e.CreatedAt, &e.UpdatedAt)
	e.EmploymentStatus = employee.EmploymentStatus(status)
	return e, err
}

func (d *employeeDirectory) getOne(ctx context.Context, where string, arg interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, d.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// GetByID implements employee.Directory.
func (d *employeeDirectory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return d.getOne(ctx, "id = $1", id)
}

// GetByUserID implements employee.Directory.
func (d *employeeDirectory) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return d.getOne(ctx, "user_id = $1", userID)
}

// ListActive implements employee.Directory.
func (d *employeeDirectory) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, d.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees
		WHERE employment_status = 'active'
		ORDER BY full_name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

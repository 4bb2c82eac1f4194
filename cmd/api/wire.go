package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cmlabs-hris/office-backend-go/internal/config"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/office-backend-go/internal/repository/postgresql"
)

// stores bundles the storage side of the app for the configured driver.
type stores struct {
	attendance attendance.AttendanceRepository
	transactor attendance.Transactor
	directory  employee.Directory
	close      func()
}

func openDB(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		seed, err := loadDirectorySeed(cfg.Database.DirectorySeedFile)
		if err != nil {
			return nil, err
		}
		store := memory.NewAttendanceStore()
		log.Warn("using in-memory attendance store; records are lost on restart", "employees", len(seed))
		return &stores{
			attendance: store,
			transactor: store,
			directory:  memory.NewDirectory(seed...),
			close:      func() {},
		}, nil

	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &stores{
			attendance: postgresql.NewAttendanceRepository(db),
			transactor: postgresql.NewTransactor(db),
			directory:  postgresql.NewEmployeeDirectory(db),
			close:      db.Close,
		}, nil
	}
}

type seedEmployee struct {
	ID               string  `json:"id"`
	UserID           *string `json:"user_id"`
	EmployeeCode     string  `json:"employee_code"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Position         *string `json:"position"`
	EmploymentStatus string  `json:"employment_status"`
}

func loadDirectorySeed(path string) ([]employee.Employee, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory seed: %w", err)
	}

	var rows []seedEmployee
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse directory seed: %w", err)
	}

	employees := make([]employee.Employee, 0, len(rows))
	for _, r := range rows {
		status := employee.EmploymentStatus(r.EmploymentStatus)
		if status == "" {
			status = employee.EmploymentStatusActive
		}
		employees = append(employees, employee.Employee{
			ID:               r.ID,
			UserID:           r.UserID,
			EmployeeCode:     r.EmployeeCode,
			FullName:         r.FullName,
			Email:            r.Email,
			Position:         r.Position,
			EmploymentStatus: status,
		})
	}
	return employees, nil
}

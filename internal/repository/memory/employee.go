package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
)

// Directory is an in-process employee.Directory, seeded by Put.
type Directory struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewDirectory(seed ...employee.Employee) *Directory {
	d := &Directory{employees: make(map[string]employee.Employee)}
	for _, e := range seed {
		d.Put(e)
	}
	return d
}

// Put adds or replaces an employee.
func (d *Directory) Put(e employee.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[e.ID] = e
}

// GetByID implements employee.Directory.
func (d *Directory) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByUserID implements employee.Directory.
func (d *Directory) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.employees {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// ListActive implements employee.Directory.
func (d *Directory) ListActive(ctx context.Context) ([]employee.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]employee.Employee, 0, len(d.employees))
	for _, e := range d.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

package employee

import "context"

// Directory resolves authenticated users to employees and lists who is expected at work.
// It is owned by the directory service; the attendance core only reads from it.
type Directory interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/attendance"
)

type undoEntry struct {
	id   string
	prev *attendance.Attendance // nil when the entry was created inside the transaction
}

type txKey struct{}

type undoLog struct {
	store   *AttendanceStore
	mu      sync.Mutex
	entries []undoEntry
}

func (r *AttendanceStore) inTransaction(ctx context.Context) bool {
	log, ok := ctx.Value(txKey{}).(*undoLog)
	return ok && log.store == r
}

// lockWrite takes the store lock for a write. Writes outside a transaction also
// wait for any running transaction, so they never build on uncommitted state.
func (r *AttendanceStore) lockWrite(ctx context.Context) func() {
	if r.inTransaction(ctx) {
		r.mu.Lock()
		return r.mu.Unlock
	}
	r.txMu.Lock()
	r.mu.Lock()
	return func() {
		r.mu.Unlock()
		r.txMu.Unlock()
	}
}

func (r *AttendanceStore) journal(ctx context.Context, e undoEntry) {
	log, ok := ctx.Value(txKey{}).(*undoLog)
	if !ok || log.store != r {
		return
	}
	log.mu.Lock()
	log.entries = append(log.entries, e)
	log.mu.Unlock()
}

// WithinTransaction implements attendance.Transactor. Writes made through the
// derived ctx are undone in reverse order when fn fails. Transactions run one
// at a time and other writers wait for them to finish.
func (r *AttendanceStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.inTransaction(ctx) {
		return fn(ctx)
	}

	r.txMu.Lock()
	defer r.txMu.Unlock()

	log := &undoLog{store: r}
	err := fn(context.WithValue(ctx, txKey{}, log))
	if err == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	log.mu.Lock()
	defer log.mu.Unlock()
	for i := len(log.entries) - 1; i >= 0; i-- {
		e := log.entries[i]
		if current, ok := r.byID[e.id]; ok {
			delete(r.byDay, keyOf(current.EmployeeID, current.DayKey))
			delete(r.byID, e.id)
		}
		if e.prev != nil {
			r.byID[e.id] = *e.prev
			r.byDay[keyOf(e.prev.EmployeeID, e.prev.DayKey)] = e.id
		}
	}
	return err
}

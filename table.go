package subprocess

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Table is the process-wide bookkeeping of live handles: an opaque
// identifier mapped to its handle under a single lock. Spawning through
// a table guarantees every child is reaped by its handle's wait
// goroutine, so no zombies accumulate, and ReleaseAll can tear down all
// pipe resources at once.
type Table struct {
	mu      sync.RWMutex
	handles map[string]*Process
	logger  *zap.Logger
	onExit  func(*Process)
}

// DefaultTable backs the package-level Spawn.
var DefaultTable = NewTable()

// TableOption configures a Table.
type TableOption func(*Table)

// WithTableLogger sets the logger for table-level events.
func WithTableLogger(logger *zap.Logger) TableOption {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithExitCallback registers a hook invoked from the reaper goroutine
// whenever a child tracked by this table exits.
func WithExitCallback(fn func(*Process)) TableOption {
	return func(t *Table) { t.onExit = fn }
}

// NewTable creates an empty handle table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		handles: make(map[string]*Process),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) add(p *Process) {
	t.mu.Lock()
	t.handles[p.id] = p
	t.mu.Unlock()
}

func (t *Table) remove(id string) {
	t.mu.Lock()
	delete(t.handles, id)
	t.mu.Unlock()
}

func (t *Table) reaped(p *Process) {
	t.logger.Debug("reaped child",
		zap.String("handle", p.id),
		zap.Int("pid", p.pid),
	)
	if t.onExit != nil {
		t.onExit(p)
	}
}

// Get returns the live handle for an identifier.
func (t *Table) Get(id string) (*Process, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.handles[id]
	return p, ok
}

// Handles returns a snapshot of every live handle.
func (t *Table) Handles() []*Process {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Process, 0, len(t.handles))
	for _, p := range t.handles {
		out = append(out, p)
	}
	return out
}

// Len reports the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handles)
}

// Release releases the handle with the given identifier and drops it
// from the table.
func (t *Table) Release(id string) error {
	p, ok := t.Get(id)
	if !ok {
		return &HandleError{Op: "release " + id, Err: ErrHandleReleased}
	}
	return p.Release()
}

// ReleaseAll releases every live handle. Children keep running; only
// the parent-held resources are freed.
func (t *Table) ReleaseAll() error {
	var errs []error
	for _, p := range t.Handles() {
		if err := p.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

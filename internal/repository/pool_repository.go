package repository

import (
	"sync"

	"github.com/lshigami/classroom/internal/model"
)

// PoolRepository is the shared, cross-teacher problem pool.
type PoolRepository interface {
	// Register inserts entry unless the pool already holds a problem with the
	// same title and description.
	Register(entry model.PoolEntry) error
	FindByID(id string) (model.PoolEntry, error)
	FindAll() []model.PoolEntry
	Restore(entries []model.PoolEntry)
}

type poolRepository struct {
	mu      sync.RWMutex
	entries []model.PoolEntry
	index   map[string]int
}

func NewPoolRepository() PoolRepository {
	return &poolRepository{index: make(map[string]int)}
}

func (r *poolRepository) Register(entry model.PoolEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if !e.Deleted() && e.SameContent(entry.Title, entry.Description) {
			return model.NewDuplicateError("problem %q is already in the repository", entry.Title)
		}
	}
	if _, ok := r.index[entry.ID]; ok {
		return model.NewDuplicateError("repository entry %s already exists", entry.ID)
	}
	r.index[entry.ID] = len(r.entries)
	r.entries = append(r.entries, cloneEntry(entry))
	return nil
}

func (r *poolRepository) FindByID(id string) (model.PoolEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok || r.entries[i].Deleted() {
		return model.PoolEntry{}, model.NewNotFoundError("repository entry %s not found", id)
	}
	return cloneEntry(r.entries[i]), nil
}

func (r *poolRepository) FindAll() []model.PoolEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PoolEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, cloneEntry(e))
	}
	return out
}

func (r *poolRepository) Restore(entries []model.PoolEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make([]model.PoolEntry, 0, len(entries))
	r.index = make(map[string]int, len(entries))
	for _, e := range entries {
		if _, ok := r.index[e.ID]; ok {
			continue
		}
		r.index[e.ID] = len(r.entries)
		r.entries = append(r.entries, cloneEntry(e))
	}
}

func cloneEntry(e model.PoolEntry) model.PoolEntry {
	e.Problem = cloneProblem(e.Problem)
	return e
}

package repository

import (
	"sync"
	"time"

	"github.com/lshigami/classroom/internal/model"
)

// ProblemRepository holds every teacher's private problems. Tombstoned problems
// stay in the store so submissions keep a valid reference.
type ProblemRepository interface {
	Create(problem model.Problem) error
	// CreateUnique inserts problem unless its author already owns a live problem
	// with the same title and description.
	CreateUnique(problem model.Problem) error
	FindByID(id string) (model.Problem, error)
	FindByIDUnscoped(id string) (model.Problem, error)
	FindByAuthor(author string) []model.Problem
	FindAll() []model.Problem
	Update(problem model.Problem) error
	SoftDelete(id string, at time.Time) error
	Restore(problems []model.Problem)
}

type problemRepository struct {
	mu    sync.RWMutex
	byID  map[string]model.Problem
	order []string
}

func NewProblemRepository() ProblemRepository {
	return &problemRepository{byID: make(map[string]model.Problem)}
}

func (r *problemRepository) Create(problem model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(problem)
}

func (r *problemRepository) CreateUnique(problem model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		p := r.byID[id]
		if !p.Deleted() && p.CreatedBy == problem.CreatedBy && p.SameContent(problem.Title, problem.Description) {
			return model.NewDuplicateError("problem %q already exists in your collection", problem.Title)
		}
	}
	return r.insert(problem)
}

func (r *problemRepository) insert(problem model.Problem) error {
	if _, ok := r.byID[problem.ID]; ok {
		return model.NewDuplicateError("problem id %s already exists", problem.ID)
	}
	r.byID[problem.ID] = cloneProblem(problem)
	r.order = append(r.order, problem.ID)
	return nil
}

func (r *problemRepository) FindByID(id string) (model.Problem, error) {
	p, err := r.FindByIDUnscoped(id)
	if err != nil {
		return model.Problem{}, err
	}
	if p.Deleted() {
		return model.Problem{}, model.NewNotFoundError("problem %s not found", id)
	}
	return p, nil
}

func (r *problemRepository) FindByIDUnscoped(id string) (model.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return model.Problem{}, model.NewNotFoundError("problem %s not found", id)
	}
	return cloneProblem(p), nil
}

func (r *problemRepository) FindByAuthor(author string) []model.Problem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Problem{}
	for _, id := range r.order {
		if p := r.byID[id]; p.CreatedBy == author && !p.Deleted() {
			out = append(out, cloneProblem(p))
		}
	}
	return out
}

// FindAll returns a snapshot in insertion order, tombstones included.
func (r *problemRepository) FindAll() []model.Problem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Problem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneProblem(r.byID[id]))
	}
	return out
}

func (r *problemRepository) Update(problem model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[problem.ID]
	if !ok || cur.Deleted() {
		return model.NewNotFoundError("problem %s not found", problem.ID)
	}
	r.byID[problem.ID] = cloneProblem(problem)
	return nil
}

func (r *problemRepository) SoftDelete(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok || p.Deleted() {
		return model.NewNotFoundError("problem %s not found", id)
	}
	p.DeletedAt = &at
	p.UpdatedAt = at
	r.byID[id] = p
	return nil
}

// Restore replaces the contents with a loaded snapshot.
func (r *problemRepository) Restore(problems []model.Problem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]model.Problem, len(problems))
	r.order = make([]string, 0, len(problems))
	for _, p := range problems {
		if _, ok := r.byID[p.ID]; ok {
			continue
		}
		r.byID[p.ID] = cloneProblem(p)
		r.order = append(r.order, p.ID)
	}
}

func cloneProblem(p model.Problem) model.Problem {
	if p.Options != nil {
		p.Options = append([]string(nil), p.Options...)
	}
	p.DeletedAt = cloneTime(p.DeletedAt)
	return p
}

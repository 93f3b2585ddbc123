package repository

import (
	"sync"
	"time"

	"github.com/lshigami/classroom/internal/model"
)

// SubmissionMutation computes the next state of a submission. exists is false when
// the student has not attempted the problem yet.
type SubmissionMutation func(cur model.Submission, exists bool) (model.Submission, error)

// SubmissionRepository stores at most one submission per (student, problem).
type SubmissionRepository interface {
	Find(studentID, problemID string) (model.Submission, bool)
	FindAll(filter model.SubmissionFilter) []model.Submission
	// Apply runs fn with the pair's writes serialized and stores its result. When fn
	// returns an error nothing is stored.
	Apply(studentID, problemID string, fn SubmissionMutation) (model.Submission, error)
	Restore(submissions []model.Submission)
}

type submissionKey struct {
	studentID string
	problemID string
}

type submissionRepository struct {
	mu    sync.RWMutex
	byKey map[submissionKey]model.Submission
	order []submissionKey

	locksMu sync.Mutex
	locks   map[submissionKey]*sync.Mutex
}

func NewSubmissionRepository() SubmissionRepository {
	return &submissionRepository{
		byKey: make(map[submissionKey]model.Submission),
		locks: make(map[submissionKey]*sync.Mutex),
	}
}

func (r *submissionRepository) lockFor(key submissionKey) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

func (r *submissionRepository) Find(studentID, problemID string) (model.Submission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byKey[submissionKey{studentID, problemID}]
	return cloneSubmission(s), ok
}

func (r *submissionRepository) FindAll(filter model.SubmissionFilter) []model.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Submission{}
	for _, k := range r.order {
		if s := r.byKey[k]; filter.Matches(s) {
			out = append(out, cloneSubmission(s))
		}
	}
	return out
}

func (r *submissionRepository) Apply(studentID, problemID string, fn SubmissionMutation) (model.Submission, error) {
	key := submissionKey{studentID, problemID}
	l := r.lockFor(key)
	l.Lock()
	defer l.Unlock()

	cur, exists := r.Find(studentID, problemID)
	next, err := fn(cur, exists)
	if err != nil {
		return cur, err
	}
	next.StudentID, next.ProblemID = studentID, problemID

	r.mu.Lock()
	if _, ok := r.byKey[key]; !ok {
		r.order = append(r.order, key)
	}
	r.byKey[key] = cloneSubmission(next)
	r.mu.Unlock()
	return next, nil
}

func (r *submissionRepository) Restore(submissions []model.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey = make(map[submissionKey]model.Submission, len(submissions))
	r.order = make([]submissionKey, 0, len(submissions))
	for _, s := range submissions {
		key := submissionKey{s.StudentID, s.ProblemID}
		if _, ok := r.byKey[key]; ok {
			continue
		}
		r.byKey[key] = cloneSubmission(s)
		r.order = append(r.order, key)
	}
}

func cloneSubmission(s model.Submission) model.Submission {
	s.SubmittedAt = cloneTime(s.SubmittedAt)
	s.CompletedAt = cloneTime(s.CompletedAt)
	s.GradedAt = cloneTime(s.GradedAt)
	return s
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

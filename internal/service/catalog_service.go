package service

import (
	"sort"
	"strings"

	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/repository"
)

// ProblemView is a listed problem with the caller's context joined in: the
// student's own attempt, or the author's attempt counts.
type ProblemView struct {
	model.Problem
	Status      model.SubmissionStatus `json:"status,omitempty"`
	Score       *int                   `json:"score,omitempty"`
	Attempts    int                    `json:"attempts"`
	Completions int                    `json:"completions"`
}

// CatalogService answers filtered listings. It only reads store snapshots.
type CatalogService interface {
	ListProblems(id model.Identity, filter model.ProblemFilter) ([]ProblemView, error)
	ListPool(id model.Identity, filter model.ProblemFilter) ([]model.PoolEntry, error)
	ListSubmissions(id model.Identity, filter model.SubmissionFilter) ([]model.Submission, error)
}

type catalogService struct {
	problems    repository.ProblemRepository
	pool        repository.PoolRepository
	submissions repository.SubmissionRepository
}

func NewCatalogService(
	problems repository.ProblemRepository,
	pool repository.PoolRepository,
	submissions repository.SubmissionRepository,
) CatalogService {
	return &catalogService{problems: problems, pool: pool, submissions: submissions}
}

func (s *catalogService) ListProblems(id model.Identity, filter model.ProblemFilter) ([]ProblemView, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	switch {
	case id.IsStudent() && id.UserID != "":
		filter.IncludeDeleted = false
		return s.studentProblems(id, filter), nil
	case id.IsTeacher() && id.UserID != "":
		if id.Role != model.RoleAdmin {
			filter.Author = id.UserID
		}
		filter.Status = ""
		return s.teacherProblems(filter), nil
	}
	return nil, model.NewAuthorizationError("unknown role %q", id.Role)
}

func (s *catalogService) studentProblems(id model.Identity, filter model.ProblemFilter) []ProblemView {
	mine := make(map[string]model.Submission)
	for _, sub := range s.submissions.FindAll(model.SubmissionFilter{StudentID: id.UserID}) {
		mine[sub.ProblemID] = sub
	}
	views := []ProblemView{}
	for _, p := range s.problems.FindAll() {
		if !filter.Matches(p) {
			continue
		}
		v := ProblemView{Problem: p, Status: model.StatusUnattempted}
		if sub, ok := mine[p.ID]; ok {
			v.Status = sub.Status
			if sub.Status == model.StatusCompleted {
				score := sub.Score
				v.Score = &score
			}
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		views = append(views, v)
	}
	sortProblems(views, func(v ProblemView) model.Problem { return v.Problem }, filter)
	return views
}

func (s *catalogService) teacherProblems(filter model.ProblemFilter) []ProblemView {
	attempts := make(map[string]int)
	completions := make(map[string]int)
	for _, sub := range s.submissions.FindAll(model.SubmissionFilter{}) {
		attempts[sub.ProblemID]++
		if sub.Status == model.StatusCompleted {
			completions[sub.ProblemID]++
		}
	}
	views := []ProblemView{}
	for _, p := range s.problems.FindAll() {
		if !filter.Matches(p) {
			continue
		}
		views = append(views, ProblemView{Problem: p, Attempts: attempts[p.ID], Completions: completions[p.ID]})
	}
	sortProblems(views, func(v ProblemView) model.Problem { return v.Problem }, filter)
	return views
}

// ListPool is open to every signed-in role. Status filtering does not apply.
func (s *catalogService) ListPool(id model.Identity, filter model.ProblemFilter) ([]model.PoolEntry, error) {
	if id.UserID == "" || !id.Role.Valid() {
		return nil, model.NewAuthorizationError("sign in to browse the repository")
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filter.Status = ""
	filter.IncludeDeleted = false
	entries := []model.PoolEntry{}
	for _, e := range s.pool.FindAll() {
		if filter.Matches(e.Problem) {
			entries = append(entries, e)
		}
	}
	sortProblems(entries, func(e model.PoolEntry) model.Problem { return e.Problem }, filter)
	return entries, nil
}

// ListSubmissions shows students their own attempts and teachers the attempts on
// problems they wrote.
func (s *catalogService) ListSubmissions(id model.Identity, filter model.SubmissionFilter) ([]model.Submission, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, model.NewValidationError("status", "unknown status %q", filter.Status)
	}
	switch {
	case id.IsStudent() && id.UserID != "":
		filter.StudentID = id.UserID
		return s.submissions.FindAll(filter), nil
	case id.Role == model.RoleAdmin && id.UserID != "":
		return s.submissions.FindAll(filter), nil
	case id.IsTeacher() && id.UserID != "":
		owned := make(map[string]bool)
		for _, p := range s.problems.FindAll() {
			if p.CreatedBy == id.UserID {
				owned[p.ID] = true
			}
		}
		out := []model.Submission{}
		for _, sub := range s.submissions.FindAll(filter) {
			if owned[sub.ProblemID] {
				out = append(out, sub)
			}
		}
		return out, nil
	}
	return nil, model.NewAuthorizationError("unknown role %q", id.Role)
}

// sortProblems orders items by the filter's sort key. Ties keep store order.
func sortProblems[T any](items []T, problem func(T) model.Problem, filter model.ProblemFilter) {
	if filter.SortBy == "" {
		return
	}
	less := func(a, b model.Problem) bool {
		switch filter.SortBy {
		case model.SortTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case model.SortDifficulty:
			return a.Difficulty.Rank() < b.Difficulty.Rank()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := problem(items[i]), problem(items[j])
		if filter.Descending {
			return less(b, a)
		}
		return less(a, b)
	})
}

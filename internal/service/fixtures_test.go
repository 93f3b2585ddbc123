package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/repository"
)

var (
	teacherT = model.Identity{UserID: "teacherT", Role: model.RoleTeacher}
	teacherU = model.Identity{UserID: "teacherU", Role: model.RoleTeacher}
	studentS = model.Identity{UserID: "studentS", Role: model.RoleStudent}
	studentR = model.Identity{UserID: "studentR", Role: model.RoleStudent}
	admin    = model.Identity{UserID: "admin", Role: model.RoleAdmin}
)

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) Notify() {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type stubGenerator struct {
	raw string
	err error
	got GenerationRequest
}

func (g *stubGenerator) Generate(_ context.Context, req GenerationRequest) (string, error) {
	g.got = req
	return g.raw, g.err
}

// clock hands out strictly increasing times.
type clock struct {
	mu  sync.Mutex
	cur time.Time
}

func newClock() *clock {
	return &clock{cur: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Minute)
	return c.cur
}

type fixture struct {
	problems    repository.ProblemRepository
	pool        repository.PoolRepository
	submissions repository.SubmissionRepository
	notifier    *countingNotifier
	generator   *stubGenerator

	problemSvc    ProblemService
	submissionSvc SubmissionService
	gradingSvc    GradingService
	catalogSvc    CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		problems:    repository.NewProblemRepository(),
		pool:        repository.NewPoolRepository(),
		submissions: repository.NewSubmissionRepository(),
		notifier:    &countingNotifier{},
		generator:   &stubGenerator{},
	}
	c := newClock()

	ps := NewProblemService(f.problems, f.pool, f.submissions, f.generator, f.notifier).(*problemService)
	ps.now = c.now
	gs := NewGradingService(f.problems, f.submissions, f.notifier).(*gradingService)
	gs.now = c.now
	ss := NewSubmissionService(f.problems, f.submissions, gs, f.notifier).(*submissionService)
	ss.now = c.now

	f.problemSvc, f.gradingSvc, f.submissionSvc = ps, gs, ss
	f.catalogSvc = NewCatalogService(f.problems, f.pool, f.submissions)
	return f
}

func capitalInput() model.ProblemInput {
	return model.ProblemInput{
		Title:        "Capital of France",
		Description:  "Which city is the capital of France?",
		Subject:      "Geography",
		Difficulty:   model.DifficultyEasy,
		Kind:         model.KindMultipleChoice,
		Options:      []string{"Paris", "Lyon", "Nice", "Lille"},
		CorrectIndex: 1,
		Explanation:  "Paris is the capital.",
	}
}

func essayInput(title string) model.ProblemInput {
	return model.ProblemInput{
		Title:           title,
		Description:     "Describe " + title,
		Subject:         "Science",
		Difficulty:      model.DifficultyMedium,
		Kind:            model.KindEssay,
		SampleAnswer:    "A model answer",
		GradingCriteria: "clarity",
	}
}

func (f *fixture) create(t *testing.T, author model.Identity, in model.ProblemInput) model.Problem {
	t.Helper()
	p, err := f.problemSvc.Create(author, in)
	require.NoError(t, err)
	return p
}

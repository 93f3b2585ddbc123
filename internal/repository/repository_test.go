package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/classroom/internal/model"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func essay(t *testing.T, author, title string) model.Problem {
	t.Helper()
	p, err := model.NewProblem(model.ProblemInput{
		Title:        title,
		Description:  "Write about " + title,
		Subject:      "Korean",
		Difficulty:   model.DifficultyMedium,
		Kind:         model.KindEssay,
		SampleAnswer: "A sample answer",
	}, author, model.OriginAuthored, now)
	require.NoError(t, err)
	return p
}

func TestProblemRepository_FindByIDHidesTombstones(t *testing.T) {
	repo := NewProblemRepository()
	p := essay(t, "teacher1", "Seasons")
	require.NoError(t, repo.Create(p))

	got, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)

	require.NoError(t, repo.SoftDelete(p.ID, now.Add(time.Hour)))

	_, err = repo.FindByID(p.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	unscoped, err := repo.FindByIDUnscoped(p.ID)
	require.NoError(t, err)
	assert.True(t, unscoped.Deleted())

	assert.Empty(t, repo.FindByAuthor("teacher1"))
	assert.Len(t, repo.FindAll(), 1)

	err = repo.SoftDelete(p.ID, now)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	err = repo.Update(unscoped)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestProblemRepository_CreateUnique(t *testing.T) {
	repo := NewProblemRepository()
	first := essay(t, "teacher1", "Seasons")
	require.NoError(t, repo.CreateUnique(first))

	again := essay(t, "teacher1", "Seasons")
	err := repo.CreateUnique(again)
	assert.True(t, errors.Is(err, model.ErrDuplicate))

	other := essay(t, "teacher2", "Seasons")
	assert.NoError(t, repo.CreateUnique(other))

	assert.Len(t, repo.FindByAuthor("teacher1"), 1)
}

func TestProblemRepository_ReturnsCopies(t *testing.T) {
	repo := NewProblemRepository()
	p, err := model.NewProblem(model.ProblemInput{
		Title:        "Capital",
		Description:  "Capital of France?",
		Difficulty:   model.DifficultyEasy,
		Kind:         model.KindMultipleChoice,
		Options:      []string{"Paris", "Lyon"},
		CorrectIndex: 1,
	}, "teacher1", model.OriginAuthored, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(p))

	got, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	got.Options[0] = "Berlin"

	again, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paris", again.Options[0])
}

func TestPoolRepository_Register(t *testing.T) {
	repo := NewPoolRepository()
	entry := model.PoolEntry{Problem: essay(t, "teacher1", "Seasons"), RegisteredBy: "teacher1", RegisteredAt: now}
	require.NoError(t, repo.Register(entry))

	dup := model.PoolEntry{Problem: essay(t, "teacher2", "Seasons"), RegisteredBy: "teacher2", RegisteredAt: now}
	err := repo.Register(dup)
	assert.True(t, errors.Is(err, model.ErrDuplicate))

	got, err := repo.FindByID(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "teacher1", got.RegisteredBy)

	_, err = repo.FindByID("missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Len(t, repo.FindAll(), 1)
}

func TestSubmissionRepository_ApplyCreatesOneRowPerPair(t *testing.T) {
	repo := NewSubmissionRepository()

	var wg sync.WaitGroup
	var created int
	var mu sync.Mutex
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Apply("student1", "p1", func(cur model.Submission, exists bool) (model.Submission, error) {
				if exists {
					return cur, nil
				}
				mu.Lock()
				created++
				mu.Unlock()
				return model.NewSubmission("student1", "p1", now), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, repo.FindAll(model.SubmissionFilter{StudentID: "student1"}), 1)
}

func TestSubmissionRepository_ApplyErrorStoresNothing(t *testing.T) {
	repo := NewSubmissionRepository()
	_, err := repo.Apply("student1", "p1", func(model.Submission, bool) (model.Submission, error) {
		return model.Submission{}, model.NewStateConflictError(model.StatusUnattempted, "not opened")
	})
	assert.True(t, errors.Is(err, model.ErrStateConflict))

	_, ok := repo.Find("student1", "p1")
	assert.False(t, ok)
}

func TestSubmissionRepository_FindAllFilters(t *testing.T) {
	repo := NewSubmissionRepository()
	repo.Restore([]model.Submission{
		{StudentID: "s1", ProblemID: "p1", Status: model.StatusInProgress},
		{StudentID: "s1", ProblemID: "p2", Status: model.StatusSubmitted},
		{StudentID: "s2", ProblemID: "p1", Status: model.StatusCompleted},
		{StudentID: "s2", ProblemID: "p1", Status: model.StatusInProgress},
	})

	assert.Len(t, repo.FindAll(model.SubmissionFilter{}), 3)
	assert.Len(t, repo.FindAll(model.SubmissionFilter{StudentID: "s1"}), 2)
	assert.Len(t, repo.FindAll(model.SubmissionFilter{ProblemID: "p1"}), 2)

	submitted := repo.FindAll(model.SubmissionFilter{Status: model.StatusSubmitted})
	require.Len(t, submitted, 1)
	assert.Equal(t, "p2", submitted[0].ProblemID)

	s, ok := repo.Find("s2", "p1")
	require.True(t, ok)
	assert.Equal(t, model.StatusCompleted, s.Status)
}

func TestNoopSnapshotRepository(t *testing.T) {
	repo := NewSnapshotRepository(nil)
	require.NoError(t, repo.Migrate())

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Problems)
	assert.NoError(t, repo.Save(context.Background(), Snapshot{Problems: []model.Problem{essay(t, "t", "x")}}))
}

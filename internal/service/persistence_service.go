package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/repository"
	"github.com/rs/zerolog/log"
)

const saveTimeout = 10 * time.Second

// ChangeNotifier is told after every committed in-memory change.
type ChangeNotifier interface {
	Notify()
}

// PersistenceService restores the in-memory stores at startup and writes them back
// in the background. Notify only signals; the write happens later and a failed
// write leaves memory untouched.
type PersistenceService interface {
	ChangeNotifier
	Restore(ctx context.Context) error
	Flush(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type persistenceService struct {
	snapshots   repository.SnapshotRepository
	problems    repository.ProblemRepository
	pool        repository.PoolRepository
	submissions repository.SubmissionRepository

	signal  chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup
	flushMu sync.Mutex
}

func NewPersistenceService(
	snapshots repository.SnapshotRepository,
	problems repository.ProblemRepository,
	pool repository.PoolRepository,
	submissions repository.SubmissionRepository,
) PersistenceService {
	return &persistenceService{
		snapshots:   snapshots,
		problems:    problems,
		pool:        pool,
		submissions: submissions,
		signal:      make(chan struct{}, 1),
		quit:        make(chan struct{}),
	}
}

// Notify never blocks; pending signals coalesce into one write.
func (s *persistenceService) Notify() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *persistenceService) Restore(ctx context.Context) error {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	problems := make([]model.Problem, 0, len(snap.Problems))
	for _, p := range snap.Problems {
		if err := checkProblem(p); err != nil {
			log.Warn().Err(err).Str("problem_id", p.ID).Msg("Skipping stored problem")
			continue
		}
		problems = append(problems, p)
	}
	entries := make([]model.PoolEntry, 0, len(snap.Pool))
	for _, e := range snap.Pool {
		if err := checkProblem(e.Problem); err != nil {
			log.Warn().Err(err).Str("entry_id", e.ID).Msg("Skipping stored repository entry")
			continue
		}
		entries = append(entries, e)
	}
	submissions := make([]model.Submission, 0, len(snap.Submissions))
	for _, sub := range snap.Submissions {
		if err := checkSubmission(sub); err != nil {
			log.Warn().Err(err).Str("student", sub.StudentID).Str("problem_id", sub.ProblemID).Msg("Skipping stored submission")
			continue
		}
		submissions = append(submissions, sub)
	}

	s.problems.Restore(problems)
	s.pool.Restore(entries)
	s.submissions.Restore(submissions)
	log.Info().
		Int("problems", len(problems)).
		Int("repository_entries", len(entries)).
		Int("submissions", len(submissions)).
		Int("skipped", len(snap.Problems)+len(snap.Pool)+len(snap.Submissions)-len(problems)-len(entries)-len(submissions)).
		Msg("State restored")
	return nil
}

// checkProblem applies the same rules a problem had to pass when it was saved.
func checkProblem(p model.Problem) error {
	if p.ID == "" {
		return model.NewValidationError("id", "id is required")
	}
	if p.CreatedBy == "" {
		return model.NewValidationError("created_by", "author is required")
	}
	return p.Input().Validate()
}

func checkSubmission(sub model.Submission) error {
	if sub.StudentID == "" || sub.ProblemID == "" {
		return model.NewValidationError("id", "student and problem are required")
	}
	if !sub.Status.Valid() || sub.Status == model.StatusUnattempted {
		return model.NewValidationError("status", "unknown stored status %q", sub.Status)
	}
	if sub.Score < 0 || sub.Score > 100 {
		return model.NewValidationError("score", "score %d is outside 0..100", sub.Score)
	}
	return nil
}

// Flush writes the current state synchronously.
func (s *persistenceService) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	snap := repository.Snapshot{
		Problems:    s.problems.FindAll(),
		Pool:        s.pool.FindAll(),
		Submissions: s.submissions.FindAll(model.SubmissionFilter{}),
	}
	return s.snapshots.Save(ctx, snap)
}

func (s *persistenceService) Start(context.Context) error {
	s.wg.Add(1)
	go s.loop()
	return nil
}

func (s *persistenceService) Stop(ctx context.Context) error {
	close(s.quit)
	s.wg.Wait()
	if err := s.Flush(ctx); err != nil {
		log.Warn().Err(err).Msg("Final state flush failed")
	}
	return nil
}

func (s *persistenceService) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case <-s.signal:
			ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			if err := s.Flush(ctx); err != nil {
				log.Warn().Err(err).Msg("State flush failed, continuing with in-memory state")
			}
			cancel()
		}
	}
}

package service

import (
	"strings"
	"time"

	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/repository"
	"github.com/rs/zerolog/log"
)

// Progress summarises one student's work.
type Progress struct {
	Available    int     `json:"available"`
	Unattempted  int     `json:"unattempted"`
	InProgress   int     `json:"in_progress"`
	Submitted    int     `json:"submitted"`
	Completed    int     `json:"completed"`
	AverageScore float64 `json:"average_score"`
}

// SubmissionService drives a student's attempt through its states.
type SubmissionService interface {
	Open(id model.Identity, problemID string) (model.Submission, error)
	SaveDraft(id model.Identity, problemID, answer string) (model.Submission, error)
	Submit(id model.Identity, problemID, answer string) (model.Submission, error)
	Get(id model.Identity, problemID string) (model.Submission, error)
	Progress(id model.Identity) (Progress, error)
}

type submissionService struct {
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	grading     GradingService
	notifier    ChangeNotifier
	now         func() time.Time
}

func NewSubmissionService(
	problems repository.ProblemRepository,
	submissions repository.SubmissionRepository,
	grading GradingService,
	notifier ChangeNotifier,
) SubmissionService {
	return &submissionService{
		problems:    problems,
		submissions: submissions,
		grading:     grading,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Open starts an attempt on first use and returns the existing one afterwards,
// whatever its status.
func (s *submissionService) Open(id model.Identity, problemID string) (model.Submission, error) {
	if err := id.RequireStudent(); err != nil {
		return model.Submission{}, err
	}
	if _, err := s.problems.FindByID(problemID); err != nil {
		return model.Submission{}, err
	}
	created := false
	sub, err := s.submissions.Apply(id.UserID, problemID, func(cur model.Submission, exists bool) (model.Submission, error) {
		if exists {
			return cur, nil
		}
		created = true
		return model.NewSubmission(id.UserID, problemID, s.now()), nil
	})
	if err != nil {
		return model.Submission{}, err
	}
	if created {
		s.notifier.Notify()
		log.Info().Str("student", id.UserID).Str("problem_id", problemID).Msg("Attempt started")
	}
	return sub, nil
}

// SaveDraft stores a work-in-progress answer. Multiple choice drafts must be empty
// or a selectable option.
func (s *submissionService) SaveDraft(id model.Identity, problemID, answer string) (model.Submission, error) {
	if err := id.RequireStudent(); err != nil {
		return model.Submission{}, err
	}
	problem, err := s.problems.FindByID(problemID)
	if err != nil {
		return model.Submission{}, err
	}
	if problem.Kind == model.KindMultipleChoice && strings.TrimSpace(answer) != "" {
		if err := model.CheckAnswer(problem, answer); err != nil {
			return model.Submission{}, err
		}
	}
	sub, err := s.submissions.Apply(id.UserID, problemID, func(cur model.Submission, exists bool) (model.Submission, error) {
		if !exists {
			return cur, model.NewStateConflictError(model.StatusUnattempted, "problem has not been opened")
		}
		return cur.SaveDraft(answer, s.now())
	})
	if err != nil {
		return model.Submission{}, err
	}
	s.notifier.Notify()
	return sub, nil
}

// Submit finalises the answer. Multiple choice is graded on the spot and completes;
// free text waits in submitted for the author to grade.
func (s *submissionService) Submit(id model.Identity, problemID, answer string) (model.Submission, error) {
	if err := id.RequireStudent(); err != nil {
		return model.Submission{}, err
	}
	problem, err := s.problems.FindByID(problemID)
	if err != nil {
		return model.Submission{}, err
	}
	sub, err := s.submissions.Apply(id.UserID, problemID, func(cur model.Submission, exists bool) (model.Submission, error) {
		if !exists {
			return cur, model.NewStateConflictError(model.StatusUnattempted, "problem has not been opened")
		}
		if cur.Status != model.StatusInProgress {
			return cur, model.NewStateConflictError(cur.Status, "answer can no longer be submitted")
		}
		if err := model.CheckAnswer(problem, answer); err != nil {
			return cur, err
		}
		now := s.now()
		if problem.Kind != model.KindMultipleChoice {
			return cur.Submit(answer, now)
		}
		candidate := cur
		candidate.Answer = answer
		score, feedback, err := s.grading.Autograde(problem, candidate)
		if err != nil {
			return cur, err
		}
		return cur.Complete(answer, score, feedback, now)
	})
	if err != nil {
		return model.Submission{}, err
	}
	s.notifier.Notify()
	log.Info().Str("student", id.UserID).Str("problem_id", problemID).Str("status", string(sub.Status)).Int("score", sub.Score).Msg("Answer submitted")
	return sub, nil
}

func (s *submissionService) Get(id model.Identity, problemID string) (model.Submission, error) {
	if err := id.RequireStudent(); err != nil {
		return model.Submission{}, err
	}
	sub, ok := s.submissions.Find(id.UserID, problemID)
	if !ok {
		return model.Submission{}, model.NewNotFoundError("no attempt on problem %s", problemID)
	}
	return sub, nil
}

// Progress counts the student's submissions per status against the live catalog.
// Attempts on deleted problems are left out, so the status counts add up to Available.
func (s *submissionService) Progress(id model.Identity) (Progress, error) {
	if err := id.RequireStudent(); err != nil {
		return Progress{}, err
	}
	live := make(map[string]bool)
	for _, p := range s.problems.FindAll() {
		if !p.Deleted() {
			live[p.ID] = true
		}
	}

	var prog Progress
	prog.Available = len(live)
	attempted, total := 0, 0
	for _, sub := range s.submissions.FindAll(model.SubmissionFilter{StudentID: id.UserID}) {
		if !live[sub.ProblemID] {
			continue
		}
		attempted++
		switch sub.Status {
		case model.StatusInProgress:
			prog.InProgress++
		case model.StatusSubmitted:
			prog.Submitted++
		case model.StatusCompleted:
			prog.Completed++
			total += sub.Score
		}
	}
	prog.Unattempted = prog.Available - attempted
	if prog.Completed > 0 {
		prog.AverageScore = float64(total) / float64(prog.Completed)
	}
	return prog, nil
}

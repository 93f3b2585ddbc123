package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	MinScore = 0
	MaxScore = 100

	feedbackCorrect   = "Correct!"
	feedbackIncorrect = "Incorrect. The correct answer is option %d."
)

// GradingService scores submissions: automatically for multiple choice, by the
// problem's author for free text.
type GradingService interface {
	Autograde(problem model.Problem, submission model.Submission) (score int, feedback string, err error)
	ManualGrade(id model.Identity, studentID, problemID string, score int, feedback string) (model.Submission, error)
	SuggestFeedback(score int) (string, error)
	PendingForGrader(id model.Identity) ([]model.Submission, error)
}

type gradingService struct {
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	notifier    ChangeNotifier
	now         func() time.Time
}

func NewGradingService(
	problems repository.ProblemRepository,
	submissions repository.SubmissionRepository,
	notifier ChangeNotifier,
) GradingService {
	return &gradingService{
		problems:    problems,
		submissions: submissions,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Autograde is all or nothing: 100 when the selected option is the correct one,
// otherwise 0. The explanation, if any, is appended to the feedback.
func (s *gradingService) Autograde(problem model.Problem, submission model.Submission) (int, string, error) {
	if problem.Kind != model.KindMultipleChoice {
		return 0, "", model.NewValidationError("kind", "%s problems are graded manually", problem.Kind)
	}
	idx, ok := model.SelectedOption(submission.Answer)
	if !ok || !problem.OptionValid(idx) {
		return 0, "", model.NewValidationError("answer", "answer must be an option between 1 and %d", len(problem.Options))
	}

	score, feedback := 0, fmt.Sprintf(feedbackIncorrect, problem.CorrectIndex)
	if idx == problem.CorrectIndex {
		score, feedback = MaxScore, feedbackCorrect
	}
	if problem.Explanation != "" {
		feedback += "\n\n" + problem.Explanation
	}
	return score, feedback, nil
}

func (s *gradingService) ManualGrade(id model.Identity, studentID, problemID string, score int, feedback string) (model.Submission, error) {
	if err := id.RequireTeacher(); err != nil {
		return model.Submission{}, err
	}
	if score < MinScore || score > MaxScore {
		return model.Submission{}, model.NewValidationError("score", "score must be between %d and %d", MinScore, MaxScore)
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return model.Submission{}, model.NewValidationError("feedback", "feedback is required")
	}

	// Tombstoned problems keep their submissions gradable.
	problem, err := s.problems.FindByIDUnscoped(problemID)
	if err != nil {
		return model.Submission{}, err
	}
	if problem.CreatedBy != id.UserID {
		log.Warn().Str("problem_id", problemID).Str("grader", id.UserID).Msg("Grading by non-author refused")
		return model.Submission{}, model.NewAuthorizationError("only the author of problem %s can grade it", problemID)
	}
	if !problem.Kind.FreeText() {
		return model.Submission{}, model.NewValidationError("kind", "multiple choice answers are graded automatically")
	}

	graded, err := s.submissions.Apply(studentID, problemID, func(cur model.Submission, exists bool) (model.Submission, error) {
		if !exists {
			return cur, model.NewNotFoundError("no submission from %s for problem %s", studentID, problemID)
		}
		return cur.Grade(score, feedback, id.UserID, s.now())
	})
	if err != nil {
		return model.Submission{}, err
	}
	s.notifier.Notify()
	log.Info().Str("problem_id", problemID).Str("student", studentID).Str("grader", id.UserID).Int("score", score).Msg("Submission graded")
	return graded, nil
}

// SuggestFeedback derives an editable starting point from the score band. It
// changes nothing.
func (s *gradingService) SuggestFeedback(score int) (string, error) {
	if score < MinScore || score > MaxScore {
		return "", model.NewValidationError("score", "score must be between %d and %d", MinScore, MaxScore)
	}
	switch {
	case score >= 90:
		return "Excellent answer! The content is accurate and well organized.", nil
	case score >= 80:
		return "Good answer. There are a few small things to improve, but overall well done.", nil
	case score >= 70:
		return "Decent answer. Some parts need improvement.", nil
	case score >= 60:
		return "The basics are there, but more explanation and concrete detail are needed.", nil
	}
	return "More effort is needed. Re-read what the problem asks and expand your answer.", nil
}

// PendingForGrader lists submitted answers waiting on the caller's own problems.
func (s *gradingService) PendingForGrader(id model.Identity) ([]model.Submission, error) {
	if err := id.RequireTeacher(); err != nil {
		return nil, err
	}
	owned := make(map[string]bool)
	for _, p := range s.problems.FindAll() {
		if p.CreatedBy == id.UserID {
			owned[p.ID] = true
		}
	}
	pending := []model.Submission{}
	for _, sub := range s.submissions.FindAll(model.SubmissionFilter{Status: model.StatusSubmitted}) {
		if owned[sub.ProblemID] {
			pending = append(pending, sub)
		}
	}
	return pending, nil
}

package model

import (
	"strconv"
	"strings"
	"time"
)

type SubmissionStatus string

const (
	// StatusUnattempted is implicit: no Submission row exists for the pair.
	StatusUnattempted SubmissionStatus = "unattempted"
	StatusInProgress  SubmissionStatus = "in_progress"
	StatusSubmitted   SubmissionStatus = "submitted"
	StatusCompleted   SubmissionStatus = "completed"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusUnattempted, StatusInProgress, StatusSubmitted, StatusCompleted:
		return true
	}
	return false
}

// transitions lists the statuses reachable in one step.
var transitions = map[SubmissionStatus][]SubmissionStatus{
	StatusUnattempted: {StatusInProgress},
	StatusInProgress:  {StatusInProgress, StatusSubmitted, StatusCompleted},
	StatusSubmitted:   {StatusCompleted},
	StatusCompleted:   nil,
}

// CanTransition reports whether the state machine has an edge from -> to.
func CanTransition(from, to SubmissionStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Submission is one student's attempt record against one problem.
type Submission struct {
	StudentID   string           `json:"student_id"`
	ProblemID   string           `json:"problem_id"`
	Status      SubmissionStatus `json:"status"`
	Answer      string           `json:"answer"`
	Score       int              `json:"score"`
	Feedback    string           `json:"feedback,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	GradedAt    *time.Time       `json:"graded_at,omitempty"`
	GradedBy    string           `json:"graded_by,omitempty"`
}

// NewSubmission opens an attempt: unattempted -> in_progress.
func NewSubmission(studentID, problemID string, now time.Time) Submission {
	return Submission{
		StudentID: studentID,
		ProblemID: problemID,
		Status:    StatusInProgress,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// SelectedOption parses a multiple choice answer. ok is false for anything
// that is not a plain decimal integer.
func SelectedOption(answer string) (idx int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0, false
	}
	return n, true
}

// CheckAnswer validates a final answer for p: non-blank text for free text kinds,
// a valid option index for multiple choice.
func CheckAnswer(p Problem, answer string) error {
	if p.Kind == KindMultipleChoice {
		idx, ok := SelectedOption(answer)
		if !ok {
			return NewValidationError("answer", "answer must be an option number")
		}
		if !p.OptionValid(idx) {
			return NewValidationError("answer", "option %d is outside 1..%d", idx, len(p.Options))
		}
		return nil
	}
	if strings.TrimSpace(answer) == "" {
		return NewValidationError("answer", "answer cannot be empty")
	}
	return nil
}

// SaveDraft is the in_progress self-loop.
func (s Submission) SaveDraft(answer string, now time.Time) (Submission, error) {
	if s.Status != StatusInProgress {
		return s, NewStateConflictError(s.Status, "drafts can only be saved while in progress")
	}
	s.Answer = answer
	s.UpdatedAt = now
	return s, nil
}

// Complete moves an in_progress multiple choice attempt straight to completed.
func (s Submission) Complete(answer string, score int, feedback string, now time.Time) (Submission, error) {
	if s.Status != StatusInProgress {
		return s, NewStateConflictError(s.Status, "answer can no longer be submitted")
	}
	s.Answer = answer
	s.Score = score
	s.Feedback = feedback
	s.Status = StatusCompleted
	s.UpdatedAt = now
	s.SubmittedAt = &now
	s.CompletedAt = &now
	return s, nil
}

// Submit moves an in_progress free text attempt to submitted.
func (s Submission) Submit(answer string, now time.Time) (Submission, error) {
	if !CanTransition(s.Status, StatusSubmitted) {
		return s, NewStateConflictError(s.Status, "answer can no longer be submitted")
	}
	s.Answer = answer
	s.Status = StatusSubmitted
	s.UpdatedAt = now
	s.SubmittedAt = &now
	return s, nil
}

// Grade records a teacher's grade: submitted -> completed.
func (s Submission) Grade(score int, feedback, grader string, now time.Time) (Submission, error) {
	if s.Status != StatusSubmitted {
		return s, NewStateConflictError(s.Status, "only submitted answers can be graded")
	}
	s.Score = score
	s.Feedback = feedback
	s.GradedBy = grader
	s.GradedAt = &now
	s.CompletedAt = &now
	s.UpdatedAt = now
	s.Status = StatusCompleted
	return s, nil
}

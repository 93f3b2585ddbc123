package dto

import (
	"time"

	"github.com/lshigami/classroom/internal/model"
)

type ProblemResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Subject         string            `json:"subject"`
	Difficulty      model.Difficulty  `json:"difficulty"`
	Kind            model.ProblemKind `json:"kind"`
	Options         []string          `json:"options,omitempty"`
	CorrectIndex    int               `json:"correct_index,omitempty"`
	Explanation     string            `json:"explanation,omitempty"`
	SampleAnswer    string            `json:"sample_answer,omitempty"`
	GradingCriteria string            `json:"grading_criteria,omitempty"`
	SchoolLevel     string            `json:"school_level,omitempty"`
	Grade           string            `json:"grade,omitempty"`
	Topic           string            `json:"topic,omitempty"`
	ExpectedMinutes int               `json:"expected_minutes,omitempty"`
	CreatedBy       string            `json:"created_by"`
	OriginalAuthor  string            `json:"original_author,omitempty"`
	Origin          model.Origin      `json:"origin"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// StudentProblemResponse hides answer keys and adds the caller's attempt state.
type StudentProblemResponse struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Subject         string                 `json:"subject"`
	Difficulty      model.Difficulty       `json:"difficulty"`
	Kind            model.ProblemKind      `json:"kind"`
	Options         []string               `json:"options,omitempty"`
	SchoolLevel     string                 `json:"school_level,omitempty"`
	Grade           string                 `json:"grade,omitempty"`
	Topic           string                 `json:"topic,omitempty"`
	ExpectedMinutes int                    `json:"expected_minutes,omitempty"`
	CreatedBy       string                 `json:"created_by"`
	Status          model.SubmissionStatus `json:"status,omitempty"`
	Score           *int                   `json:"score,omitempty"`
}

type TeacherProblemResponse struct {
	ProblemResponse
	Attempts    int `json:"attempts"`
	Completions int `json:"completions"`
}

type PoolEntryResponse struct {
	ProblemResponse
	RegisteredBy string    `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
}

type DraftDTO struct {
	Kind            model.ProblemKind `json:"kind"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Options         []string          `json:"options,omitempty"`
	CorrectIndex    *int              `json:"correct_index,omitempty"`
	Explanation     string            `json:"explanation,omitempty"`
	SampleAnswer    string            `json:"sample_answer,omitempty"`
	GradingCriteria string            `json:"grading_criteria,omitempty"`
	ExpectedMinutes *int              `json:"expected_minutes,omitempty"`
}

type DraftsResponse struct {
	Drafts []DraftDTO `json:"drafts"`
	Count  int        `json:"count"`
}

type ImportRowResponse struct {
	Row     int              `json:"row"`
	Problem *ProblemResponse `json:"problem,omitempty"`
	Error   *ErrorResponse   `json:"error,omitempty"`
}

type ImportResponse struct {
	Created int                 `json:"created"`
	Failed  int                 `json:"failed"`
	Rows    []ImportRowResponse `json:"rows"`
}

type SubmissionResponse struct {
	StudentID   string                 `json:"student_id"`
	ProblemID   string                 `json:"problem_id"`
	Status      model.SubmissionStatus `json:"status"`
	Answer      string                 `json:"answer"`
	Score       int                    `json:"score"`
	Feedback    string                 `json:"feedback,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	GradedAt    *time.Time             `json:"graded_at,omitempty"`
	GradedBy    string                 `json:"graded_by,omitempty"`
}

type ProgressResponse struct {
	Available    int     `json:"available"`
	Unattempted  int     `json:"unattempted"`
	InProgress   int     `json:"in_progress"`
	Submitted    int     `json:"submitted"`
	Completed    int     `json:"completed"`
	AverageScore float64 `json:"average_score"`
}

type FeedbackSuggestionResponse struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

type ErrorResponse struct {
	Message       string                 `json:"message"`
	Details       []string               `json:"details,omitempty"`
	Field         string                 `json:"field,omitempty"`
	CurrentStatus model.SubmissionStatus `json:"current_status,omitempty"`
}

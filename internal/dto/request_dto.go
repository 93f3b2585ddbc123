package dto

import "github.com/lshigami/classroom/internal/model"

// ProblemRequest creates or replaces a problem. Kind-specific rules (options for
// multiple choice, sample answer for free text) are checked by the engine.
type ProblemRequest struct {
	Title           string            `json:"title" binding:"required"`
	Description     string            `json:"description" binding:"required"`
	Subject         string            `json:"subject"`
	Difficulty      model.Difficulty  `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Kind            model.ProblemKind `json:"kind" binding:"required,oneof=multiple_choice short_answer essay"`
	Options         []string          `json:"options" binding:"omitempty,max=10"`
	CorrectIndex    int               `json:"correct_index" binding:"gte=0"` // 1-based
	Explanation     string            `json:"explanation"`
	SampleAnswer    string            `json:"sample_answer"`
	GradingCriteria string            `json:"grading_criteria"`
	SchoolLevel     string            `json:"school_level"`
	Grade           string            `json:"grade"`
	Topic           string            `json:"topic"`
	ExpectedMinutes int               `json:"expected_minutes" binding:"gte=0"`
}

type ImportProblemsRequest struct {
	Problems []ProblemRequest `json:"problems" binding:"required,min=1,dive"`
}

type GenerateProblemsRequest struct {
	Subject     string            `json:"subject" binding:"required"`
	SchoolLevel string            `json:"school_level"`
	Grade       string            `json:"grade"`
	Difficulty  model.Difficulty  `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Topic       string            `json:"topic"`
	Kind        model.ProblemKind `json:"kind" binding:"required,oneof=multiple_choice short_answer essay"`
	Count       int               `json:"count" binding:"required,min=1,max=5"`
}

type ParseProblemsRequest struct {
	Raw  string            `json:"raw" binding:"required"`
	Kind model.ProblemKind `json:"kind" binding:"required,oneof=multiple_choice short_answer essay"`
}

// DraftDefaults fills the classification fields that drafts do not carry.
type DraftDefaults struct {
	Subject     string            `json:"subject"`
	SchoolLevel string            `json:"school_level"`
	Grade       string            `json:"grade"`
	Difficulty  model.Difficulty  `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Topic       string            `json:"topic"`
	Kind        model.ProblemKind `json:"kind" binding:"omitempty,oneof=multiple_choice short_answer essay"`
}

type AcceptDraftsRequest struct {
	Defaults DraftDefaults `json:"defaults" binding:"required"`
	Drafts   []DraftDTO    `json:"drafts" binding:"required,min=1"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type GradeRequest struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
}

// ProblemQuery carries catalog filters from the query string.
type ProblemQuery struct {
	Kind        model.ProblemKind      `form:"kind"`
	Difficulty  model.Difficulty       `form:"difficulty"`
	Subject     string                 `form:"subject"`
	SchoolLevel string                 `form:"school_level"`
	Grade       string                 `form:"grade"`
	Topic       string                 `form:"topic"`
	Author      string                 `form:"author"`
	Search      string                 `form:"q"`
	Status      model.SubmissionStatus `form:"status"`
	Sort        model.SortKey          `form:"sort"`
	Order       string                 `form:"order" binding:"omitempty,oneof=asc desc"`
}

func (q ProblemQuery) Filter() model.ProblemFilter {
	return model.ProblemFilter{
		Kind:        q.Kind,
		Difficulty:  q.Difficulty,
		Subject:     q.Subject,
		SchoolLevel: q.SchoolLevel,
		Grade:       q.Grade,
		Topic:       q.Topic,
		Author:      q.Author,
		Search:      q.Search,
		Status:      q.Status,
		SortBy:      q.Sort,
		Descending:  q.Order == "desc",
	}
}

type SubmissionQuery struct {
	StudentID string                 `form:"student_id"`
	ProblemID string                 `form:"problem_id"`
	Status    model.SubmissionStatus `form:"status"`
}

func (q SubmissionQuery) Filter() model.SubmissionFilter {
	return model.SubmissionFilter{StudentID: q.StudentID, ProblemID: q.ProblemID, Status: q.Status}
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProblemKind string

const (
	KindMultipleChoice ProblemKind = "multiple_choice"
	KindShortAnswer    ProblemKind = "short_answer"
	KindEssay          ProblemKind = "essay"
)

func (k ProblemKind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindShortAnswer, KindEssay:
		return true
	}
	return false
}

// FreeText reports whether answers to this kind are graded by a teacher.
func (k ProblemKind) FreeText() bool {
	return k == KindShortAnswer || k == KindEssay
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Rank orders difficulties for sorting.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

type Origin string

const (
	OriginAuthored               Origin = "authored"
	OriginImportedFromRepository Origin = "imported_from_repository"
	OriginAIGenerated            Origin = "ai_generated"
)

// Problem is an authored assessment item. Options and CorrectIndex are only
// meaningful for multiple choice; SampleAnswer and GradingCriteria for free text.
type Problem struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Subject         string      `json:"subject"`
	Difficulty      Difficulty  `json:"difficulty"`
	Kind            ProblemKind `json:"kind"`
	Options         []string    `json:"options,omitempty"`
	CorrectIndex    int         `json:"correct_index,omitempty"` // 1-based
	Explanation     string      `json:"explanation,omitempty"`
	SampleAnswer    string      `json:"sample_answer,omitempty"`
	GradingCriteria string      `json:"grading_criteria,omitempty"`
	SchoolLevel     string      `json:"school_level,omitempty"`
	Grade           string      `json:"grade,omitempty"`
	Topic           string      `json:"topic,omitempty"`
	ExpectedMinutes int         `json:"expected_minutes,omitempty"`
	CreatedBy       string      `json:"created_by"`
	OriginalAuthor  string      `json:"original_author,omitempty"`
	Origin          Origin      `json:"origin"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	DeletedAt       *time.Time  `json:"-"`
}

func (p Problem) Deleted() bool { return p.DeletedAt != nil }

// SameContent is the duplicate test used when copying between collections.
func (p Problem) SameContent(title, description string) bool {
	return p.Title == title && p.Description == description
}

// OptionValid reports whether idx is a selectable 1-based option of p.
func (p Problem) OptionValid(idx int) bool {
	return idx >= 1 && idx <= len(p.Options)
}

// ProblemInput carries the author-editable fields of a Problem.
type ProblemInput struct {
	Title           string
	Description     string
	Subject         string
	Difficulty      Difficulty
	Kind            ProblemKind
	Options         []string
	CorrectIndex    int
	Explanation     string
	SampleAnswer    string
	GradingCriteria string
	SchoolLevel     string
	Grade           string
	Topic           string
	ExpectedMinutes int
}

// Validate enforces the Problem invariants. It never fills in defaults.
func (in ProblemInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewValidationError("description", "description is required")
	}
	if !in.Kind.Valid() {
		return NewValidationError("kind", "unknown problem kind %q", in.Kind)
	}
	if !in.Difficulty.Valid() {
		return NewValidationError("difficulty", "unknown difficulty %q", in.Difficulty)
	}
	if in.ExpectedMinutes < 0 {
		return NewValidationError("expected_minutes", "expected minutes cannot be negative")
	}

	if in.Kind == KindMultipleChoice {
		if len(in.Options) == 0 {
			return NewValidationError("options", "multiple choice problems need at least one option")
		}
		for i, opt := range in.Options {
			if strings.TrimSpace(opt) == "" {
				return NewValidationError("options", "option %d is empty", i+1)
			}
		}
		if in.CorrectIndex < 1 || in.CorrectIndex > len(in.Options) {
			return NewValidationError("correct_index", "correct index %d is outside 1..%d", in.CorrectIndex, len(in.Options))
		}
		return nil
	}

	if len(in.Options) > 0 || in.CorrectIndex != 0 {
		return NewValidationError("options", "%s problems cannot carry options", in.Kind)
	}
	if strings.TrimSpace(in.SampleAnswer) == "" {
		return NewValidationError("sample_answer", "sample answer is required for %s problems", in.Kind)
	}
	return nil
}

func (in ProblemInput) normalized() ProblemInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Subject = strings.TrimSpace(in.Subject)
	in.SchoolLevel = strings.TrimSpace(in.SchoolLevel)
	in.Grade = strings.TrimSpace(in.Grade)
	in.Topic = strings.TrimSpace(in.Topic)
	if len(in.Options) > 0 {
		opts := make([]string, len(in.Options))
		for i, o := range in.Options {
			opts[i] = strings.TrimSpace(o)
		}
		in.Options = opts
	}
	return in
}

// NewProblem validates in and builds a Problem with a fresh identity.
func NewProblem(in ProblemInput, author string, origin Origin, now time.Time) (Problem, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return Problem{}, err
	}
	if strings.TrimSpace(author) == "" {
		return Problem{}, NewValidationError("created_by", "author is required")
	}
	p := Problem{
		ID:        uuid.NewString(),
		CreatedBy: author,
		Origin:    origin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.apply(in)
	return p, nil
}

// Edit returns p with in applied, keeping identity and provenance.
func (p Problem) Edit(in ProblemInput, now time.Time) (Problem, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return Problem{}, err
	}
	p.apply(in)
	p.UpdatedAt = now
	return p, nil
}

// Input extracts the editable fields, e.g. to copy a problem into another collection.
func (p Problem) Input() ProblemInput {
	return ProblemInput{
		Title:           p.Title,
		Description:     p.Description,
		Subject:         p.Subject,
		Difficulty:      p.Difficulty,
		Kind:            p.Kind,
		Options:         append([]string(nil), p.Options...),
		CorrectIndex:    p.CorrectIndex,
		Explanation:     p.Explanation,
		SampleAnswer:    p.SampleAnswer,
		GradingCriteria: p.GradingCriteria,
		SchoolLevel:     p.SchoolLevel,
		Grade:           p.Grade,
		Topic:           p.Topic,
		ExpectedMinutes: p.ExpectedMinutes,
	}
}

func (p *Problem) apply(in ProblemInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.Subject = in.Subject
	p.Difficulty = in.Difficulty
	p.Kind = in.Kind
	p.Options = in.Options
	p.CorrectIndex = in.CorrectIndex
	p.Explanation = in.Explanation
	p.SampleAnswer = in.SampleAnswer
	p.GradingCriteria = in.GradingCriteria
	p.SchoolLevel = in.SchoolLevel
	p.Grade = in.Grade
	p.Topic = in.Topic
	p.ExpectedMinutes = in.ExpectedMinutes
}

// PoolEntry is a problem registered in the shared repository pool.
type PoolEntry struct {
	Problem
	RegisteredBy string    `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
}

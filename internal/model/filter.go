package model

import "strings"

type SortKey string

const (
	SortCreatedAt  SortKey = "created_at"
	SortTitle      SortKey = "title"
	SortDifficulty SortKey = "difficulty"
)

// ProblemFilter is a conjunction: every non-empty field must match.
type ProblemFilter struct {
	Kind        ProblemKind
	Difficulty  Difficulty
	Subject     string
	SchoolLevel string
	Grade       string
	Topic       string
	Author      string
	// Search is a case-insensitive substring match on title or description.
	Search string
	// Status is only honoured for student callers.
	Status SubmissionStatus

	SortBy         SortKey
	Descending     bool
	IncludeDeleted bool
}

// Matches checks the problem-only predicates; Status is joined by the caller.
func (f ProblemFilter) Matches(p Problem) bool {
	if p.Deleted() && !f.IncludeDeleted {
		return false
	}
	if f.Kind != "" && p.Kind != f.Kind {
		return false
	}
	if f.Difficulty != "" && p.Difficulty != f.Difficulty {
		return false
	}
	if f.Subject != "" && !strings.EqualFold(p.Subject, f.Subject) {
		return false
	}
	if f.SchoolLevel != "" && !strings.EqualFold(p.SchoolLevel, f.SchoolLevel) {
		return false
	}
	if f.Grade != "" && p.Grade != f.Grade {
		return false
	}
	if f.Topic != "" && !strings.EqualFold(p.Topic, f.Topic) {
		return false
	}
	if f.Author != "" && p.CreatedBy != f.Author {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// Validate rejects enum values the engine does not know.
func (f ProblemFilter) Validate() error {
	if f.Kind != "" && !f.Kind.Valid() {
		return NewValidationError("kind", "unknown problem kind %q", f.Kind)
	}
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		return NewValidationError("difficulty", "unknown difficulty %q", f.Difficulty)
	}
	if f.Status != "" && !f.Status.Valid() {
		return NewValidationError("status", "unknown status %q", f.Status)
	}
	switch f.SortBy {
	case "", SortCreatedAt, SortTitle, SortDifficulty:
	default:
		return NewValidationError("sort", "unknown sort key %q", f.SortBy)
	}
	return nil
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	StudentID string
	ProblemID string
	Status    SubmissionStatus
}

func (f SubmissionFilter) Matches(s Submission) bool {
	if f.StudentID != "" && s.StudentID != f.StudentID {
		return false
	}
	if f.ProblemID != "" && s.ProblemID != f.ProblemID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}

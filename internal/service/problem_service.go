package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/parser"
	"github.com/lshigami/classroom/internal/repository"
	"github.com/rs/zerolog/log"
)

// DefaultExpectedMinutes applies to accepted drafts that carry no expected time.
const DefaultExpectedMinutes = 10

// ImportResult reports the outcome of one row of a bulk operation. Exactly one of
// Problem and Err is set.
type ImportResult struct {
	Row     int
	Problem *model.Problem
	Err     error
}

type ProblemService interface {
	Create(id model.Identity, in model.ProblemInput) (model.Problem, error)
	Import(id model.Identity, rows []model.ProblemInput) ([]ImportResult, error)
	Generate(ctx context.Context, id model.Identity, req GenerationRequest) ([]parser.Draft, error)
	ParseDrafts(id model.Identity, raw string, kind model.ProblemKind) ([]parser.Draft, error)
	AcceptDrafts(id model.Identity, defaults GenerationRequest, drafts []parser.Draft) ([]ImportResult, error)
	Get(problemID string) (model.Problem, error)
	View(id model.Identity, problemID string) (model.Problem, error)
	Update(id model.Identity, problemID string, in model.ProblemInput) (model.Problem, error)
	Delete(id model.Identity, problemID string) error
	RegisterToPool(id model.Identity, problemID string) (model.PoolEntry, error)
	GetPoolEntry(entryID string) (model.PoolEntry, error)
	CopyFromPool(id model.Identity, entryID string) (model.Problem, error)
}

type problemService struct {
	problems    repository.ProblemRepository
	pool        repository.PoolRepository
	submissions repository.SubmissionRepository
	generator   ProblemGeneratorService
	notifier    ChangeNotifier
	now         func() time.Time
}

func NewProblemService(
	problems repository.ProblemRepository,
	pool repository.PoolRepository,
	submissions repository.SubmissionRepository,
	generator ProblemGeneratorService,
	notifier ChangeNotifier,
) ProblemService {
	return &problemService{
		problems:    problems,
		pool:        pool,
		submissions: submissions,
		generator:   generator,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (s *problemService) Create(id model.Identity, in model.ProblemInput) (model.Problem, error) {
	if err := id.RequireTeacher(); err != nil {
		return model.Problem{}, err
	}
	p, err := s.create(id, in, model.OriginAuthored)
	if err != nil {
		return model.Problem{}, err
	}
	s.notifier.Notify()
	return p, nil
}

func (s *problemService) create(id model.Identity, in model.ProblemInput, origin model.Origin) (model.Problem, error) {
	p, err := model.NewProblem(in, id.UserID, origin, s.now())
	if err != nil {
		return model.Problem{}, err
	}
	if err := s.problems.Create(p); err != nil {
		return model.Problem{}, err
	}
	log.Info().Str("problem_id", p.ID).Str("author", p.CreatedBy).Str("kind", string(p.Kind)).Str("origin", string(origin)).Msg("Problem created")
	return p, nil
}

// Import creates one problem per valid row. Invalid rows are reported and skipped.
func (s *problemService) Import(id model.Identity, rows []model.ProblemInput) ([]ImportResult, error) {
	if err := id.RequireTeacher(); err != nil {
		return nil, err
	}
	results := s.createAll(id, rows, model.OriginAuthored)
	log.Info().Str("author", id.UserID).Int("rows", len(rows)).Int("created", countCreated(results)).Msg("Problems imported")
	return results, nil
}

func (s *problemService) createAll(id model.Identity, rows []model.ProblemInput, origin model.Origin) []ImportResult {
	results := make([]ImportResult, len(rows))
	created := false
	for i, in := range rows {
		results[i].Row = i + 1
		p, err := s.create(id, in, origin)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Problem = &p
		created = true
	}
	if created {
		s.notifier.Notify()
	}
	return results
}

func countCreated(results []ImportResult) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Generate asks the text generator for problems and parses its output. An empty
// result means nothing usable came back and is not an error.
func (s *problemService) Generate(ctx context.Context, id model.Identity, req GenerationRequest) ([]parser.Draft, error) {
	if err := id.RequireTeacher(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate problems: %w", err)
	}
	drafts := parser.Parse(raw, req.Kind)
	if len(drafts) == 0 {
		log.Warn().Str("author", id.UserID).Int("raw_length", len(raw)).Msg("Generator output contained no usable problems")
	}
	return drafts, nil
}

func (s *problemService) ParseDrafts(id model.Identity, raw string, kind model.ProblemKind) ([]parser.Draft, error) {
	if err := id.RequireTeacher(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, model.NewValidationError("kind", "unknown problem kind %q", kind)
	}
	return parser.Parse(raw, kind), nil
}

// AcceptDrafts validates each reviewed draft strictly and saves the valid ones.
// Classification fields come from defaults; nothing is invented for a missing
// answer.
func (s *problemService) AcceptDrafts(id model.Identity, defaults GenerationRequest, drafts []parser.Draft) ([]ImportResult, error) {
	if err := id.RequireTeacher(); err != nil {
		return nil, err
	}
	rows := make([]model.ProblemInput, len(drafts))
	for i, d := range drafts {
		rows[i] = draftInput(d, defaults)
	}
	results := s.createAll(id, rows, model.OriginAIGenerated)
	log.Info().Str("author", id.UserID).Int("drafts", len(drafts)).Int("created", countCreated(results)).Msg("Drafts accepted")
	return results, nil
}

func draftInput(d parser.Draft, defaults GenerationRequest) model.ProblemInput {
	in := model.ProblemInput{
		Title:           d.Title,
		Description:     d.Description,
		Kind:            d.Kind,
		Options:         d.Options,
		Explanation:     d.Explanation,
		SampleAnswer:    d.SampleAnswer,
		GradingCriteria: d.GradingCriteria,
		Subject:         defaults.Subject,
		SchoolLevel:     defaults.SchoolLevel,
		Grade:           defaults.Grade,
		Topic:           defaults.Topic,
		Difficulty:      defaults.Difficulty,
		ExpectedMinutes: DefaultExpectedMinutes,
	}
	if in.Kind == "" {
		in.Kind = defaults.Kind
	}
	if d.CorrectIndex != nil {
		in.CorrectIndex = *d.CorrectIndex
	}
	if d.ExpectedMinutes != nil {
		in.ExpectedMinutes = *d.ExpectedMinutes
	}
	return in
}

func (s *problemService) Get(problemID string) (model.Problem, error) {
	return s.problems.FindByID(problemID)
}

// View returns a problem with its answer key. Only the author and admins may see it.
func (s *problemService) View(id model.Identity, problemID string) (model.Problem, error) {
	if err := id.RequireTeacher(); err != nil {
		return model.Problem{}, err
	}
	if id.Role == model.RoleAdmin {
		return s.problems.FindByID(problemID)
	}
	return s.owned(id, problemID)
}

func (s *problemService) owned(id model.Identity, problemID string) (model.Problem, error) {
	if err := id.RequireTeacher(); err != nil {
		return model.Problem{}, err
	}
	p, err := s.problems.FindByID(problemID)
	if err != nil {
		return model.Problem{}, err
	}
	if p.CreatedBy != id.UserID {
		log.Warn().Str("problem_id", problemID).Str("user", id.UserID).Msg("Problem access by non-author refused")
		return model.Problem{}, model.NewAuthorizationError("only the author can manage problem %s", problemID)
	}
	return p, nil
}

func (s *problemService) Update(id model.Identity, problemID string, in model.ProblemInput) (model.Problem, error) {
	p, err := s.owned(id, problemID)
	if err != nil {
		return model.Problem{}, err
	}
	// Existing submissions are graded by kind; switching it would strand them.
	if in.Kind != p.Kind && len(s.submissions.FindAll(model.SubmissionFilter{ProblemID: problemID})) > 0 {
		return model.Problem{}, model.NewValidationError("kind", "kind cannot change once students have attempted problem %s", problemID)
	}
	updated, err := p.Edit(in, s.now())
	if err != nil {
		return model.Problem{}, err
	}
	if err := s.problems.Update(updated); err != nil {
		return model.Problem{}, err
	}
	s.notifier.Notify()
	log.Info().Str("problem_id", problemID).Msg("Problem updated")
	return updated, nil
}

func (s *problemService) Delete(id model.Identity, problemID string) error {
	if _, err := s.owned(id, problemID); err != nil {
		return err
	}
	if err := s.problems.SoftDelete(problemID, s.now()); err != nil {
		return err
	}
	s.notifier.Notify()
	log.Info().Str("problem_id", problemID).Msg("Problem deleted")
	return nil
}

// RegisterToPool copies one of the caller's problems into the shared pool under a
// new identity.
func (s *problemService) RegisterToPool(id model.Identity, problemID string) (model.PoolEntry, error) {
	p, err := s.owned(id, problemID)
	if err != nil {
		return model.PoolEntry{}, err
	}
	now := s.now()
	entry := model.PoolEntry{Problem: p, RegisteredBy: id.UserID, RegisteredAt: now}
	entry.ID = uuid.NewString()
	entry.CreatedAt, entry.UpdatedAt = now, now
	if entry.OriginalAuthor == "" {
		entry.OriginalAuthor = p.CreatedBy
	}
	if err := s.pool.Register(entry); err != nil {
		return model.PoolEntry{}, err
	}
	s.notifier.Notify()
	log.Info().Str("problem_id", problemID).Str("entry_id", entry.ID).Msg("Problem registered to repository")
	return entry, nil
}

func (s *problemService) GetPoolEntry(entryID string) (model.PoolEntry, error) {
	return s.pool.FindByID(entryID)
}

// CopyFromPool adds a pool problem to the caller's own collection.
func (s *problemService) CopyFromPool(id model.Identity, entryID string) (model.Problem, error) {
	if err := id.RequireTeacher(); err != nil {
		return model.Problem{}, err
	}
	entry, err := s.pool.FindByID(entryID)
	if err != nil {
		return model.Problem{}, err
	}
	p, err := model.NewProblem(entry.Input(), id.UserID, model.OriginImportedFromRepository, s.now())
	if err != nil {
		return model.Problem{}, err
	}
	p.OriginalAuthor = entry.OriginalAuthor
	if p.OriginalAuthor == "" {
		p.OriginalAuthor = entry.CreatedBy
	}
	if err := s.problems.CreateUnique(p); err != nil {
		return model.Problem{}, err
	}
	s.notifier.Notify()
	log.Info().Str("entry_id", entryID).Str("problem_id", p.ID).Str("user", id.UserID).Msg("Repository problem copied")
	return p, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/classroom/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is the full engine state as written to and read from storage.
type Snapshot struct {
	Problems    []model.Problem
	Pool        []model.PoolEntry
	Submissions []model.Submission
}

// SnapshotRepository persists whole snapshots. The in-memory stores stay the
// source of truth; storage only needs to survive restarts.
type SnapshotRepository interface {
	Migrate() error
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

type ProblemRecord struct {
	ID              string            `gorm:"primaryKey;type:varchar(36)"`
	Title           string            `gorm:"not null"`
	Description     string            `gorm:"type:text;not null"`
	Subject         string            `gorm:"index"`
	Difficulty      model.Difficulty  `gorm:"type:varchar(16)"`
	Kind            model.ProblemKind `gorm:"type:varchar(32)"`
	Options         []string          `gorm:"serializer:json"`
	CorrectIndex    int
	Explanation     string `gorm:"type:text"`
	SampleAnswer    string `gorm:"type:text"`
	GradingCriteria string `gorm:"type:text"`
	SchoolLevel     string
	Grade           string
	Topic           string
	ExpectedMinutes int
	CreatedBy       string `gorm:"index"`
	OriginalAuthor  string
	Origin          model.Origin `gorm:"type:varchar(32)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

func (ProblemRecord) TableName() string { return "problems" }

type PoolEntryRecord struct {
	ProblemRecord `gorm:"embedded"`
	RegisteredBy  string `gorm:"index"`
	RegisteredAt  time.Time
}

func (PoolEntryRecord) TableName() string { return "repository_entries" }

type SubmissionRecord struct {
	StudentID   string                 `gorm:"primaryKey;type:varchar(64)"`
	ProblemID   string                 `gorm:"primaryKey;type:varchar(36)"`
	Status      model.SubmissionStatus `gorm:"type:varchar(16);index"`
	Answer      string                 `gorm:"type:text"`
	Score       int
	Feedback    string `gorm:"type:text"`
	StartedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
	CompletedAt *time.Time
	GradedAt    *time.Time
	GradedBy    string
}

func (SubmissionRecord) TableName() string { return "submissions" }

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository returns a gorm backed repository, or one that keeps
// nothing when db is nil.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	if db == nil {
		return noopSnapshotRepository{}
	}
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Migrate() error {
	return r.db.AutoMigrate(&ProblemRecord{}, &PoolEntryRecord{}, &SubmissionRecord{})
}

func (r *snapshotRepository) Load(ctx context.Context) (Snapshot, error) {
	db := r.db.WithContext(ctx)

	var problems []ProblemRecord
	if err := db.Order("created_at asc").Find(&problems).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load problems: %w", err)
	}
	var entries []PoolEntryRecord
	if err := db.Order("registered_at asc").Find(&entries).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load repository entries: %w", err)
	}
	var submissions []SubmissionRecord
	if err := db.Order("started_at asc").Find(&submissions).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load submissions: %w", err)
	}

	snap := Snapshot{
		Problems:    make([]model.Problem, 0, len(problems)),
		Pool:        make([]model.PoolEntry, 0, len(entries)),
		Submissions: make([]model.Submission, 0, len(submissions)),
	}
	for _, rec := range problems {
		var p model.Problem
		if err := copier.CopyWithOption(&p, &rec, copier.Option{DeepCopy: true}); err != nil {
			return Snapshot{}, fmt.Errorf("map problem %s: %w", rec.ID, err)
		}
		snap.Problems = append(snap.Problems, p)
	}
	for _, rec := range entries {
		var e model.PoolEntry
		if err := copier.CopyWithOption(&e.Problem, &rec.ProblemRecord, copier.Option{DeepCopy: true}); err != nil {
			return Snapshot{}, fmt.Errorf("map repository entry %s: %w", rec.ID, err)
		}
		e.RegisteredBy, e.RegisteredAt = rec.RegisteredBy, rec.RegisteredAt
		snap.Pool = append(snap.Pool, e)
	}
	for _, rec := range submissions {
		var s model.Submission
		if err := copier.Copy(&s, &rec); err != nil {
			return Snapshot{}, fmt.Errorf("map submission %s/%s: %w", rec.StudentID, rec.ProblemID, err)
		}
		snap.Submissions = append(snap.Submissions, s)
	}
	return snap, nil
}

func (r *snapshotRepository) Save(ctx context.Context, snap Snapshot) error {
	problems := make([]ProblemRecord, len(snap.Problems))
	for i := range snap.Problems {
		if err := copier.CopyWithOption(&problems[i], &snap.Problems[i], copier.Option{DeepCopy: true}); err != nil {
			return fmt.Errorf("map problem %s: %w", snap.Problems[i].ID, err)
		}
	}
	entries := make([]PoolEntryRecord, len(snap.Pool))
	for i, e := range snap.Pool {
		if err := copier.CopyWithOption(&entries[i].ProblemRecord, &e.Problem, copier.Option{DeepCopy: true}); err != nil {
			return fmt.Errorf("map repository entry %s: %w", e.ID, err)
		}
		entries[i].RegisteredBy, entries[i].RegisteredAt = e.RegisteredBy, e.RegisteredAt
	}
	submissions := make([]SubmissionRecord, len(snap.Submissions))
	for i := range snap.Submissions {
		if err := copier.Copy(&submissions[i], &snap.Submissions[i]); err != nil {
			return fmt.Errorf("map submission: %w", err)
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func() *gorm.DB { return tx.Clauses(clause.OnConflict{UpdateAll: true}) }
		if len(problems) > 0 {
			if err := upsert().CreateInBatches(problems, 200).Error; err != nil {
				return fmt.Errorf("save problems: %w", err)
			}
		}
		if len(entries) > 0 {
			if err := upsert().CreateInBatches(entries, 200).Error; err != nil {
				return fmt.Errorf("save repository entries: %w", err)
			}
		}
		if len(submissions) > 0 {
			if err := upsert().CreateInBatches(submissions, 200).Error; err != nil {
				return fmt.Errorf("save submissions: %w", err)
			}
		}
		return nil
	})
}

type noopSnapshotRepository struct{}

func (noopSnapshotRepository) Migrate() error { return nil }

func (noopSnapshotRepository) Load(context.Context) (Snapshot, error) { return Snapshot{}, nil }

func (noopSnapshotRepository) Save(context.Context, Snapshot) error { return nil }

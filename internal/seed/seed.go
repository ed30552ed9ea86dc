// Package seed populates empty directory collections with the initial
// activities and teacher accounts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/activity-directory/internal/application"
	"github.com/example/activity-directory/internal/persistence"
)

// Report summarises one Initialize run.
type Report struct {
	ActivitiesInserted int
	TeachersInserted   int
	// Repaired is set when a failed insert loop was recovered by overwriting
	// a collection wholesale.
	Repaired bool
}

// Initializer seeds collections. Its zero value is not usable; construct it
// with NewInitializer.
type Initializer struct {
	hash   application.PasswordHasher
	logger *slog.Logger
}

// NewInitializer returns an Initializer hashing teacher passwords with hash.
// A nil hash uses application.HashPassword.
func NewInitializer(hash application.PasswordHasher, logger *slog.Logger) *Initializer {
	if hash == nil {
		hash = application.HashPassword
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Initializer{hash: hash, logger: logger.With("component", "seed")}
}

// Initialize inserts the initial records into whichever collection is empty.
//
// Teacher passwords are hashed up front on every call, whether or not the
// teacher collection needs seeding. A failure while seeding is logged and
// repaired by replacing the contents of collections that implement
// persistence.Replacer; the returned error is non-nil only when a failure
// could not be repaired. Populated collections are left untouched.
func (i *Initializer) Initialize(ctx context.Context, activities, teachers persistence.Collection) (Report, error) {
	activityDocs := ActivityDocuments()
	teacherDocs, hashErr := i.teacherDocuments()

	var report Report
	err := i.seed(ctx, activities, teachers, activityDocs, teacherDocs, hashErr, &report)
	if err == nil {
		i.logger.InfoContext(ctx, "seed complete",
			"activities_inserted", report.ActivitiesInserted,
			"teachers_inserted", report.TeachersInserted,
		)
		return report, nil
	}

	i.logger.ErrorContext(ctx, "database initialization error", "error", err)

	repairErr := i.repair(ctx, activities, activityDocs)
	if hashErr == nil {
		repairErr = errors.Join(repairErr, i.repair(ctx, teachers, teacherDocs))
	} else {
		repairErr = errors.Join(repairErr, hashErr)
	}
	report.Repaired = true
	if repairErr != nil {
		report.Repaired = false
		return report, fmt.Errorf("seed: %w", errors.Join(err, repairErr))
	}
	i.logger.WarnContext(ctx, "seed data written directly after failure")
	return report, nil
}

func (i *Initializer) seed(ctx context.Context, activities, teachers persistence.Collection, activityDocs, teacherDocs []persistence.Document, hashErr error, report *Report) error {
	n, err := insertIfEmpty(ctx, activities, activityDocs)
	report.ActivitiesInserted = n
	if err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}

	count, err := teachers.CountDocuments(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed teachers: count: %w", err)
	}
	if count > 0 {
		return nil
	}
	if hashErr != nil {
		return fmt.Errorf("seed teachers: %w", hashErr)
	}
	n, err = insertAll(ctx, teachers, teacherDocs)
	report.TeachersInserted = n
	if err != nil {
		return fmt.Errorf("seed teachers: %w", err)
	}
	return nil
}

func insertIfEmpty(ctx context.Context, c persistence.Collection, docs []persistence.Document) (int, error) {
	count, err := c.CountDocuments(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	return insertAll(ctx, c, docs)
}

func insertAll(ctx context.Context, c persistence.Collection, docs []persistence.Document) (int, error) {
	inserted := 0
	for _, doc := range docs {
		res, err := c.InsertOne(ctx, doc)
		if err != nil {
			return inserted, err
		}
		if !res.Acknowledged {
			id, _ := doc.ID()
			return inserted, fmt.Errorf("insert %q not acknowledged", id)
		}
		inserted++
	}
	return inserted, nil
}

func (i *Initializer) repair(ctx context.Context, c persistence.Collection, docs []persistence.Document) error {
	replacer, ok := c.(persistence.Replacer)
	if !ok {
		return errors.New("collection cannot be overwritten directly")
	}
	return replacer.Replace(ctx, docs)
}

func (i *Initializer) teacherDocuments() ([]persistence.Document, error) {
	seeds := Teachers()
	docs := make([]persistence.Document, 0, len(seeds))
	for _, t := range seeds {
		hashed, err := i.hash(t.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", t.Username, err)
		}
		docs = append(docs, persistence.TeacherDocument(persistence.Teacher{
			Username:     t.Username,
			DisplayName:  t.DisplayName,
			PasswordHash: hashed,
			Role:         t.Role,
		}))
	}
	return docs, nil
}

// ActivityDocuments returns the initial activities as documents keyed by name.
func ActivityDocuments() []persistence.Document {
	activities := Activities()
	docs := make([]persistence.Document, len(activities))
	for i, a := range activities {
		docs[i] = persistence.ActivityDocument(a)
	}
	return docs
}

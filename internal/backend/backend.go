// Package backend selects and opens the document store behind the directory's
// activity and teacher collections.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/activity-directory/internal/config"
	"github.com/example/activity-directory/internal/persistence"
	"github.com/example/activity-directory/internal/persistence/memory"
	"github.com/example/activity-directory/internal/persistence/mongo"
	"github.com/example/activity-directory/internal/persistence/sqlite"
)

// Collection names shared by every backend.
const (
	ActivitiesCollection = "activities"
	TeachersCollection   = "teachers"
)

// Kind names the storage variant a Backend is bound to.
type Kind string

const (
	KindMongo  Kind = "mongo"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// Backend holds the two directory collections and whatever owns them.
type Backend struct {
	Activities persistence.Collection
	Teachers   persistence.Collection
	Kind       Kind

	close func(ctx context.Context) error
}

// Close releases the underlying client or database handle. It is safe to call
// more than once.
func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.close == nil {
		return nil
	}
	closeFn := b.close
	b.close = nil
	return closeFn(ctx)
}

// Open binds collections according to cfg.Backend.
//
// In auto mode a failed MongoDB probe is not an error: the backend falls back
// to two independent in-memory collections and logs the failure at warn. The
// mongo mode returns the probe error instead.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "backend")

	switch cfg.Backend {
	case config.BackendMemory:
		logger.InfoContext(ctx, "using in-memory storage")
		return openMemory(), nil

	case config.BackendSQLite:
		b, err := openSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "connected to sqlite", "path", cfg.SQLitePath)
		return b, nil

	case config.BackendMongo:
		b, err := openMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "connected to mongodb", "database", cfg.MongoDatabase)
		return b, nil

	case config.BackendAuto, "":
		b, err := openMongo(ctx, cfg)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.WarnContext(ctx, "mongodb not available, using in-memory storage", "error", err)
			return openMemory(), nil
		}
		logger.InfoContext(ctx, "connected to mongodb", "database", cfg.MongoDatabase)
		return b, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func openMemory() *Backend {
	return &Backend{
		Activities: memory.New(),
		Teachers:   memory.New(),
		Kind:       KindMemory,
	}
}

func openSQLite(ctx context.Context, path string) (*Backend, error) {
	storage, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx); err != nil {
		return nil, errors.Join(err, storage.Close())
	}
	return &Backend{
		Activities: storage.Collection(ActivitiesCollection),
		Teachers:   storage.Collection(TeachersCollection),
		Kind:       KindSQLite,
		close: func(context.Context) error {
			return storage.Close()
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (*Backend, error) {
	client, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.ProbeTimeout)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Activities: client.Collection(ActivitiesCollection),
		Teachers:   client.Collection(TeachersCollection),
		Kind:       KindMongo,
		close:      client.Disconnect,
	}, nil
}

package testfixtures

import (
	"context"
	"log/slog"
	"testing"

	"github.com/example/activity-directory/internal/application"
	"github.com/example/activity-directory/internal/persistence"
	"github.com/example/activity-directory/internal/persistence/memory"
	"github.com/example/activity-directory/internal/seed"
)

// FastArgon2idParams keep argon2id hashing cheap enough for unit tests. Hashes
// still verify through application.VerifyPassword because the parameters are
// encoded in them.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// FastPasswordHasher hashes with FastArgon2idParams.
var FastPasswordHasher = application.NewPasswordHasher(FastArgon2idParams)

// ServiceFactory assists tests with constructing application services over
// seeded in-memory collections.
type ServiceFactory struct {
	Activities *memory.Store
	Teachers   *memory.Store
	Logger     *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// WithoutSeed leaves both collections empty.
func WithoutSeed() ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Activities = memory.New()
		factory.Teachers = memory.New()
	}
}

// NewServiceFactory returns a factory whose collections hold the initial
// activities and teachers unless WithoutSeed is given.
func NewServiceFactory(tb testing.TB, opts ...ServiceFactoryOption) *ServiceFactory {
	tb.Helper()

	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Activities == nil || factory.Teachers == nil {
		factory.Activities = memory.New()
		factory.Teachers = memory.New()
		initializer := seed.NewInitializer(FastPasswordHasher, factory.Logger)
		if _, err := initializer.Initialize(context.Background(), factory.Activities, factory.Teachers); err != nil {
			tb.Fatalf("failed to seed collections: %v", err)
		}
	}
	return factory
}

// AddActivities stores the fixtures in the activity collection.
func (f *ServiceFactory) AddActivities(tb testing.TB, fixtures ...ActivityFixture) {
	tb.Helper()
	for _, fixture := range fixtures {
		insert(tb, f.Activities, fixture.Document())
	}
}

// AddTeachers stores the fixtures in the teacher collection.
func (f *ServiceFactory) AddTeachers(tb testing.TB, fixtures ...TeacherFixture) {
	tb.Helper()
	for _, fixture := range fixtures {
		doc, err := fixture.Document()
		if err != nil {
			tb.Fatalf("failed to hash password for %s: %v", fixture.Username, err)
		}
		insert(tb, f.Teachers, doc)
	}
}

// NewActivityService builds an activity service over the factory's activities.
func (f *ServiceFactory) NewActivityService() *application.ActivityService {
	return application.NewActivityServiceWithLogger(f.Activities, f.Logger)
}

// NewAuthService builds an auth service over the factory's teachers.
func (f *ServiceFactory) NewAuthService() *application.AuthService {
	return application.NewAuthServiceWithLogger(f.Teachers, application.VerifyPassword, f.Logger)
}

func insert(tb testing.TB, c persistence.Collection, doc persistence.Document) {
	tb.Helper()
	res, err := c.InsertOne(context.Background(), doc)
	if err != nil {
		tb.Fatalf("failed to insert fixture: %v", err)
	}
	if !res.Acknowledged {
		tb.Fatalf("fixture insert not acknowledged: %v", doc)
	}
}

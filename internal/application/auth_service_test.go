package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/activity-directory/internal/application"
	"github.com/example/activity-directory/internal/persistence"
	"github.com/example/activity-directory/internal/seed"
	"github.com/example/activity-directory/internal/testfixtures"
)

func TestAuthServiceAuthenticatesSeededTeachers(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewAuthService()

	for _, account := range seed.Teachers() {
		t.Run(account.Username, func(t *testing.T) {
			teacher, err := svc.Authenticate(context.Background(), application.AuthenticateParams{
				Username: account.Username,
				Password: account.Password,
			})
			if err != nil {
				t.Fatalf("Authenticate returned error: %v", err)
			}
			if teacher.Username != account.Username || teacher.Role != account.Role {
				t.Fatalf("unexpected teacher: %+v", teacher)
			}
		})
	}
}

func TestAuthServiceNormalizesUsername(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewAuthService()

	teacher, err := svc.Authenticate(context.Background(), application.AuthenticateParams{Username: "  Principal ", Password: "admin789"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if teacher.Role != persistence.RoleAdmin {
		t.Fatalf("expected admin role, got %q", teacher.Role)
	}
}

func TestAuthServiceRejectsBadCredentials(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewAuthService()

	cases := map[string]application.AuthenticateParams{
		"wrong password": {Username: "mchen", Password: "chess457"},
		"unknown user":   {Username: "nobody", Password: "chess456"},
		"empty password": {Username: "mchen"},
		"empty username": {Password: "chess456"},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Authenticate(context.Background(), params); !errors.Is(err, application.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthServiceMasksVerifierErrors(t *testing.T) {
	factory := testfixtures.NewServiceFactory(t)
	verify := func(string, string) error { return application.ErrInvalidPasswordHash }
	svc := application.NewAuthService(factory.Teachers, verify)

	if _, err := svc.Authenticate(context.Background(), application.AuthenticateParams{Username: "mchen", Password: "chess456"}); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthServiceRejectsCorruptStoredHash(t *testing.T) {
	factory := testfixtures.NewServiceFactory(t, testfixtures.WithoutSeed())
	ctx := context.Background()
	if _, err := factory.Teachers.InsertOne(ctx, persistence.TeacherDocument(persistence.Teacher{
		Username:     "imported",
		DisplayName:  "Imported Account",
		PasswordHash: "$argon2id$v=19$m=8,t=1,p=0$c2FsdHNhbHQ$a2V5a2V5",
		Role:         persistence.RoleTeacher,
	})); err != nil {
		t.Fatalf("InsertOne returned error: %v", err)
	}

	svc := factory.NewAuthService()
	if _, err := svc.Authenticate(ctx, application.AuthenticateParams{Username: "imported", Password: "x"}); !errors.Is(err, application.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthServiceGetTeacher(t *testing.T) {
	svc := testfixtures.NewServiceFactory(t).NewAuthService()

	teacher, err := svc.GetTeacher(context.Background(), "MRODRIGUEZ")
	if err != nil {
		t.Fatalf("GetTeacher returned error: %v", err)
	}
	if teacher.DisplayName != "Ms. Rodriguez" {
		t.Fatalf("unexpected teacher: %+v", teacher)
	}
	if teacher.PasswordHash == "art123" {
		t.Fatal("password stored in clear text")
	}

	if _, err := svc.GetTeacher(context.Background(), "ghost"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

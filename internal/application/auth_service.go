package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/activity-directory/internal/persistence"
)

// AuthService verifies teacher logins against the teacher collection.
type AuthService struct {
	teachers       persistence.Collection
	verifyPassword PasswordVerifier
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService. A nil verify uses VerifyPassword.
func NewAuthService(teachers persistence.Collection, verify PasswordVerifier) *AuthService {
	return NewAuthServiceWithLogger(teachers, verify, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(teachers persistence.Collection, verify PasswordVerifier, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	return &AuthService{
		teachers:       teachers,
		verifyPassword: verify,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate returns the teacher whose stored hash verifies params.Password.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (teacher persistence.Teacher, err error) {
	if s == nil || s.teachers == nil {
		err = fmt.Errorf("teacher collection not configured")
		return
	}

	username := normalizeUsername(params.Username)
	logger := s.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "authentication succeeded", "role", teacher.Role)
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var found persistence.Teacher
	found, err = s.GetTeacher(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if verr := s.verifyPassword(found.PasswordHash, params.Password); verr != nil {
		err = ErrInvalidCredentials
		return
	}

	teacher = found
	return
}

// GetTeacher returns the teacher account stored under username.
func (s *AuthService) GetTeacher(ctx context.Context, username string) (persistence.Teacher, error) {
	if s == nil || s.teachers == nil {
		return persistence.Teacher{}, fmt.Errorf("teacher collection not configured")
	}
	doc, err := s.teachers.FindOne(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Teacher{}, ErrNotFound
		}
		return persistence.Teacher{}, err
	}
	return persistence.DecodeTeacher(doc)
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

package application

import (
	"errors"
	"strings"
	"testing"
)

var testParams = Argon2idParams{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashPasswordEncodesDefaultParams(t *testing.T) {
	hash, err := HashPassword("art123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Fatalf("unexpected encoding %q", hash)
	}
	if err := VerifyPassword(hash, "art123"); err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
}

func TestCreatePasswordHashSaltsEachCall(t *testing.T) {
	t.Parallel()

	hash := NewPasswordHasher(testParams)
	first, err := hash("chess456")
	if err != nil {
		t.Fatalf("hash returned error: %v", err)
	}
	second, err := hash("chess456")
	if err != nil {
		t.Fatalf("hash returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
	for _, h := range []string{first, second} {
		if err := VerifyPassword(h, "chess456"); err != nil {
			t.Fatalf("VerifyPassword(%q) returned error: %v", h, err)
		}
	}
}

func TestVerifyPasswordMismatch(t *testing.T) {
	t.Parallel()

	hash, err := CreatePasswordHash("admin789", testParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}
	if err := VerifyPassword(hash, "admin788"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                                                ErrInvalidPasswordHash,
		"admin789":                                        ErrInvalidPasswordHash,
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5":           ErrInvalidPasswordHash,
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5":          ErrInvalidPasswordHash,
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5":            ErrInvalidPasswordHash,
		"$argon2id$v=19$m=64,t=1,p=1$c2FsdA$":             ErrInvalidPasswordHash,
		"$argon2id$v=16$m=64,t=1,p=1$c2FsdA$a2V5":         ErrIncompatiblePasswordVersion,
		"$argon2id$v=19$m=8,t=1,p=0$c2FsdA$a2V5":          ErrInvalidPasswordHash,
		"$argon2id$v=19$m=64,t=0,p=1$c2FsdA$a2V5":         ErrInvalidPasswordHash,
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5":          ErrInvalidPasswordHash,
		"$argon2id$v=19$m=64,t=1,p=1$$a2V5":               ErrInvalidPasswordHash,
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$a2V5": ErrInvalidPasswordHash,
	}
	for encoded, want := range cases {
		if err := VerifyPassword(encoded, "admin789"); !errors.Is(err, want) {
			t.Fatalf("VerifyPassword(%q) = %v, want %v", encoded, err, want)
		}
	}
}

package security

import (
	"errors"
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatalf("wrong password must not verify")
	}
}

func TestIssueUserToken_RoundTrip(t *testing.T) {
	token, err := IssueUserToken("test-secret", "teacher@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}

	claims, errParse := ParseUserToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("ParseUserToken: %v", errParse)
	}
	if claims.Subject != "teacher@example.com" {
		t.Fatalf("subject = %q, want teacher email", claims.Subject)
	}
}

func TestIssueUserToken_EmptySecret(t *testing.T) {
	if _, err := IssueUserToken("   ", "teacher@example.com", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestParseUserToken_WrongSecret(t *testing.T) {
	token, err := IssueUserToken("right-secret", "teacher@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}
	if _, errParse := ParseUserToken("wrong-secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseUserToken_Expired(t *testing.T) {
	token, err := IssueUserToken("test-secret", "teacher@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}
	if _, errParse := ParseUserToken("test-secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", errParse)
	}
}

func TestParseUserToken_Garbage(t *testing.T) {
	if _, errParse := ParseUserToken("test-secret", "not.a.token"); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

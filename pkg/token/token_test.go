package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerifyAccess(t *testing.T) {
	now := time.Unix(1700000000, 0)

	acc, err := IssueAccess("test_secret", "user-1", "ADMIN", 15*time.Minute, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := VerifyAccess(acc.Token, "test_secret", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != "user-1" || got.Role != "ADMIN" {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestVerifyAccess_Expired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	acc, _ := IssueAccess("test_secret", "user-1", "ADMIN", time.Minute, now)

	if _, err := VerifyAccess(acc.Token, "test_secret", now.Add(2*time.Minute)); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	acc, _ := IssueAccess("test_secret", "user-1", "CUSTOMER", time.Minute, now)

	if _, err := VerifyAccess(acc.Token, "other_secret", now); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestVerifyAccess_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Unix(1700000000, 0)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Role: "SUPER_ADMIN",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test_secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccess(s, "test_secret", now); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}

func TestHashRefresh_Stable(t *testing.T) {
	raw, err := NewRefresh()
	if err != nil {
		t.Fatalf("new refresh: %v", err)
	}
	if len(raw) != 96 {
		t.Fatalf("expected 96 hex chars, got %d", len(raw))
	}
	if HashRefresh(raw) != HashRefresh(raw) || HashRefresh(raw) == raw {
		t.Fatalf("unexpected hash behaviour")
	}
}

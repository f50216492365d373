package util

import (
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	s, err := RandomString(32)
	if err != nil {
		t.Fatalf("RandomString failed: %v", err)
	}
	if len(s) != 32 {
		t.Errorf("len = %d, want 32", len(s))
	}
	if strings.ContainsAny(s, "+/=") {
		t.Errorf("RandomString returned non URL-safe characters: %q", s)
	}

	s2, _ := RandomString(32)
	if s == s2 {
		t.Error("two calls returned the same string")
	}

	if _, err := RandomString(0); err == nil {
		t.Error("RandomString(0) error = nil, want error")
	}
}

func TestVerificationCode(t *testing.T) {
	code := VerificationCode("secret", "REG-2024-001")
	if len(code) != 16 {
		t.Errorf("len(code) = %d, want 16", len(code))
	}
	if code != VerificationCode("secret", " reg-2024-001 ") {
		t.Error("code should ignore case and surrounding spaces")
	}
	if code == VerificationCode("other", "REG-2024-001") {
		t.Error("code should depend on the secret")
	}
	if code == VerificationCode("secret", "REG-2024-002") {
		t.Error("code should depend on the value")
	}
}

func TestCheckVerificationCode(t *testing.T) {
	code := VerificationCode("secret", "REG-7")

	if !CheckVerificationCode("secret", "REG-7", code) {
		t.Error("valid code rejected")
	}
	if !CheckVerificationCode("secret", "REG-7", strings.ToLower(code)) {
		t.Error("lower-case code rejected")
	}
	if CheckVerificationCode("secret", "REG-8", code) {
		t.Error("code accepted for another value")
	}
	if CheckVerificationCode("secret", "REG-7", "") {
		t.Error("empty code accepted")
	}
}

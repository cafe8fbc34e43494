package common

import (
	"strings"
	"testing"
)

func TestRandomSaltRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		salt, err := RandomSalt()
		if err != nil {
			t.Fatal(err)
		}
		if salt.Sign() < 0 {
			t.Fatalf("salt is negative: %s", salt)
		}
		if salt.Cmp(MaxSaltValue) >= 0 {
			t.Fatalf("salt %s exceeds 2^128-1", salt)
		}
		if salt.String() == "" {
			t.Fatal("salt has no decimal form")
		}
	}
}

func TestNewRecoveryCode(t *testing.T) {
	code, err := NewRecoveryCode()
	if err != nil {
		t.Fatal(err)
	}
	if len(code) == 0 {
		t.Fatal("empty recovery code")
	}
	for _, group := range strings.Split(code, "-") {
		if len(group) == 0 || len(group) > 4 {
			t.Fatalf("bad group %q in code %q", group, code)
		}
	}

	other, err := NewRecoveryCode()
	if err != nil {
		t.Fatal(err)
	}
	if code == other {
		t.Fatal("two generated codes are identical")
	}
}

func TestHashRecoveryCodeNormalization(t *testing.T) {
	code, err := NewRecoveryCode()
	if err != nil {
		t.Fatal(err)
	}

	h1 := HashRecoveryCode(code)
	h2 := HashRecoveryCode(strings.ToLower(code))
	h3 := HashRecoveryCode(" " + strings.ReplaceAll(code, "-", "") + " ")
	if h1 != h2 || h1 != h3 {
		t.Fatalf("hash is not normalization-invariant: %s %s %s", h1, h2, h3)
	}

	if HashRecoveryCode("AAAA-BBBB") == HashRecoveryCode("AAAA-CCCC") {
		t.Fatal("distinct codes hash identically")
	}
}

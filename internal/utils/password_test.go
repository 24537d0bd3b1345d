package utils

import (
	"strings"
	"testing"
)

func TestHashPassword_ProducesBcryptHash(t *testing.T) {
	hash, err := HashPassword("op3n-sesame")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("hash %q does not look like bcrypt output", hash)
	}
	if strings.Contains(hash, "op3n-sesame") {
		t.Error("hash must not embed the plaintext password")
	}
}

func TestHashPassword_SaltsEachCall(t *testing.T) {
	first, _ := HashPassword("op3n-sesame")
	second, _ := HashPassword("op3n-sesame")

	if first == second {
		t.Error("two hashes of the same password should differ")
	}
	if !CheckPassword("op3n-sesame", first) || !CheckPassword("op3n-sesame", second) {
		t.Error("both salted hashes should still verify")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("op3n-sesame")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"exact match", "op3n-sesame", true},
		{"wrong password", "shut-sesame", false},
		{"empty password", "", false},
		{"trailing character", "op3n-sesame!", false},
		{"different case", "Op3n-Sesame", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, hash); got != tt.expected {
				t.Errorf("CheckPassword(%q) = %v, expected %v", tt.password, got, tt.expected)
			}
		})
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$truncated"} {
		if CheckPassword("op3n-sesame", hash) {
			t.Errorf("CheckPassword against hash %q should fail", hash)
		}
	}
}

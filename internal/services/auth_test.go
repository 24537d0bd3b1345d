package services

import (
	"encoding/hex"
	"testing"
)

func TestGenerateRefreshToken(t *testing.T) {
	token, hash, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(token) != 64 {
		t.Errorf("token length = %d, expected 64 hex chars", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}
	if hash != hashRefreshToken(token) {
		t.Error("returned hash does not match hashing the token")
	}

	second, _, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == token {
		t.Error("two generated tokens should not collide")
	}
}

func TestHashRefreshToken(t *testing.T) {
	a := hashRefreshToken("abc")
	b := hashRefreshToken("abc")
	c := hashRefreshToken("abd")

	if a != b {
		t.Error("hashing the same token twice should be deterministic")
	}
	if a == c {
		t.Error("different tokens should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, expected 64 hex chars", len(a))
	}
	if a == "abc" {
		t.Error("hash should not echo the token")
	}
}

func TestLoginRequest_DefaultAuthType(t *testing.T) {
	req := LoginRequest{
		Username: "dana",
		Password: "s3cret",
	}

	if req.AuthType != "" {
		t.Errorf("AuthType should be empty before Login defaults it, got %q", req.AuthType)
	}
}

func TestChangePasswordRequest_Structure(t *testing.T) {
	req := ChangePasswordRequest{
		OldPassword: "old-pass",
		NewPassword: "longer-new-pass",
	}

	if req.OldPassword != "old-pass" {
		t.Errorf("OldPassword = %q, expected %q", req.OldPassword, "old-pass")
	}
	if req.NewPassword != "longer-new-pass" {
		t.Errorf("NewPassword = %q, expected %q", req.NewPassword, "longer-new-pass")
	}
}

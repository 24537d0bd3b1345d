package utils

import (
	"strings"
	"testing"
	"time"
)

func init() {
	SetJWTSecret("jwt-test-secret")
}

func TestTokenRoundtrip(t *testing.T) {
	tests := []struct {
		name     string
		userID   uint
		username string
		role     string
	}{
		{"admin user", 1, "admin", "admin"},
		{"regular user", 42, "dana", "user"},
		{"unicode username", 7, "李雷", "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.username, tt.role, 24)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			claims, err := ParseToken(token)
			if err != nil {
				t.Fatalf("ParseToken() error = %v", err)
			}

			if claims.UserID != tt.userID {
				t.Errorf("UserID = %d, expected %d", claims.UserID, tt.userID)
			}
			if claims.Username != tt.username {
				t.Errorf("Username = %q, expected %q", claims.Username, tt.username)
			}
			if claims.Role != tt.role {
				t.Errorf("Role = %q, expected %q", claims.Role, tt.role)
			}
			if claims.Issuer != "daworks" {
				t.Errorf("Issuer = %q, expected %q", claims.Issuer, "daworks")
			}
		})
	}
}

func TestParseToken_Garbage(t *testing.T) {
	for _, token := range []string{
		"",
		"plainstring",
		"two.parts",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.broken.signature",
	} {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) should fail", token)
		}
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(1, "dana", "user", -1)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken should reject an expired token")
	}
}

func TestParseToken_TamperedPayload(t *testing.T) {
	token, _ := GenerateToken(1, "dana", "user", 24)

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, expected 3", len(parts))
	}
	// Swap the payload against the original signature.
	forged, _ := GenerateToken(1, "dana", "admin", 24)
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	if _, err := ParseToken(tampered); err == nil {
		t.Error("ParseToken should reject a token with a swapped payload")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, _ := GenerateToken(1, "dana", "user", 24)

	SetJWTSecret("secret-b")
	_, err := ParseToken(token)

	SetJWTSecret("jwt-test-secret")

	if err == nil {
		t.Error("ParseToken should fail when the secret changed")
	}
}

func TestGenerateToken_ExpiryHorizon(t *testing.T) {
	token, _ := GenerateToken(1, "dana", "user", 2)
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < time.Hour || remaining > 2*time.Hour+time.Minute {
		t.Errorf("token lifetime = %v, expected about 2h", remaining)
	}
}

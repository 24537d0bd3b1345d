package middleware

import (
	"strings"
	"testing"
)

func TestAuditModule(t *testing.T) {
	tests := []struct {
		fullPath string
		expected string
	}{
		{"/api/users/:id", "User"},
		{"/api/llm-configs", "LLMConfig"},
		{"/api/notify-bots/:id/test", "NotifyBot"},
		{"/api/system-config/digest", "SystemConfig"},
		{"/api/digests/generate", "Digest"},
		{"/api/unknown-thing", "unknown-thing"},
		{"/api/", "Admin"},
	}

	for _, tt := range tests {
		if got := auditModule(tt.fullPath); got != tt.expected {
			t.Errorf("auditModule(%q) = %q, expected %q", tt.fullPath, got, tt.expected)
		}
	}
}

func TestAuditAction(t *testing.T) {
	tests := []struct {
		method   string
		expected string
	}{
		{"POST", "Create"},
		{"PUT", "Update"},
		{"DELETE", "Delete"},
		{"PATCH", "PATCH"},
	}

	for _, tt := range tests {
		if got := auditAction(tt.method); got != tt.expected {
			t.Errorf("auditAction(%q) = %q, expected %q", tt.method, got, tt.expected)
		}
	}
}

func TestMaskAuditBody_MasksSensitiveFields(t *testing.T) {
	body := `{"username":"admin","password":"hunter2","api_key":"sk-123"}`

	masked := maskAuditBody([]byte(body))

	if strings.Contains(masked, "hunter2") {
		t.Error("password value should be masked")
	}
	if strings.Contains(masked, "sk-123") {
		t.Error("api_key value should be masked")
	}
	if !strings.Contains(masked, "admin") {
		t.Error("non-sensitive values should survive")
	}
	if !strings.Contains(masked, "***") {
		t.Error("masked marker missing")
	}
}

func TestMaskAuditBody_NonJSON(t *testing.T) {
	masked := maskAuditBody([]byte("not json at all"))
	if !strings.Contains(masked, "not JSON") {
		t.Errorf("non-JSON body should be recorded by size, got %q", masked)
	}

	if got := maskAuditBody(nil); got != "" {
		t.Errorf("empty body should yield empty string, got %q", got)
	}
}

func TestMaskAuditBody_Truncates(t *testing.T) {
	long := `{"notes":"` + strings.Repeat("x", 3000) + `"}`

	masked := maskAuditBody([]byte(long))

	if len(masked) > auditBodyLimit+20 {
		t.Errorf("masked body length %d exceeds the limit", len(masked))
	}
	if !strings.HasSuffix(masked, "...[truncated]") {
		t.Error("expected truncation marker")
	}
}

package services

import (
	"strings"
	"testing"
	"time"

	"github.com/danodev/daworks/internal/models"
)

func TestFlattenTurns(t *testing.T) {
	turns := []ChatTurn{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi, how can I help?"},
		{Role: "user", Content: "What day is it?"},
	}

	result := flattenTurns(turns)

	if !strings.Contains(result, "You are a helpful assistant.") {
		t.Error("system content should be present without a prefix")
	}
	if strings.Contains(result, "System:") {
		t.Error("system turns should not carry a role prefix")
	}
	if !strings.Contains(result, "User: Hello") {
		t.Errorf("flattenTurns() = %q, expected user prefix", result)
	}
	if !strings.Contains(result, "Assistant: Hi, how can I help?") {
		t.Errorf("flattenTurns() = %q, expected assistant prefix", result)
	}
	if strings.HasSuffix(result, "\n") {
		t.Error("result should be trimmed")
	}
}

func TestFlattenTurnsEmpty(t *testing.T) {
	if result := flattenTurns(nil); result != "" {
		t.Errorf("flattenTurns(nil) = %q, expected empty string", result)
	}
}

func TestToOpenAIMessages(t *testing.T) {
	turns := []ChatTurn{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	}

	msgs := toOpenAIMessages(turns)

	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, expected 3", len(msgs))
	}
	for i, turn := range turns {
		if msgs[i].Role != turn.Role {
			t.Errorf("msgs[%d].Role = %v, expected %v", i, msgs[i].Role, turn.Role)
		}
		if msgs[i].Content != turn.Content {
			t.Errorf("msgs[%d].Content = %v, expected %v", i, msgs[i].Content, turn.Content)
		}
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short title unchanged",
			input:    "Hello",
			expected: "Hello",
		},
		{
			name:     "exactly 60 runes unchanged",
			input:    strings.Repeat("a", 60),
			expected: strings.Repeat("a", 60),
		},
		{
			name:     "long title truncated",
			input:    strings.Repeat("b", 80),
			expected: strings.Repeat("b", 60),
		},
		{
			name:     "multibyte runes counted as runes",
			input:    strings.Repeat("日", 70),
			expected: strings.Repeat("日", 60),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncateTitle(tt.input)
			if result != tt.expected {
				t.Errorf("truncateTitle() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestTruncateErrorMessage(t *testing.T) {
	short := "connection refused"
	if result := truncateErrorMessage(short); result != short {
		t.Errorf("truncateErrorMessage() = %v, expected %v", result, short)
	}

	long := strings.Repeat("x", 600)
	result := truncateErrorMessage(long)
	if len(result) != 500 {
		t.Errorf("len(result) = %d, expected 500", len(result))
	}
}

func TestFormatPatientContext(t *testing.T) {
	dob := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)
	patient := &models.Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "555-0101",
		DateOfBirth: &dob,
		Gender:      "female",
		Source:      models.PatientSourceIntakeForm,
		Status:      "new",
		Notes:       "Allergic to penicillin",
	}

	result := formatPatientContext(patient)

	expected := []string{
		"Name: Jane Doe",
		"Email: jane@example.com",
		"Phone: 555-0101",
		"Date of birth: 1990-05-12",
		"Gender: female",
		"Source: intake_form",
		"Status: new",
		"Notes: Allergic to penicillin",
	}
	for _, want := range expected {
		if !strings.Contains(result, want) {
			t.Errorf("formatPatientContext() missing %q", want)
		}
	}
}

func TestFormatPatientContextOmitsEmptyFields(t *testing.T) {
	patient := &models.Patient{
		FirstName: "John",
		LastName:  "Smith",
		Source:    models.PatientSourceWalkIn,
		Status:    "active",
	}

	result := formatPatientContext(patient)

	if strings.Contains(result, "Email:") {
		t.Error("empty email should be omitted")
	}
	if strings.Contains(result, "Phone:") {
		t.Error("empty phone should be omitted")
	}
	if strings.Contains(result, "Notes:") {
		t.Error("empty notes should be omitted")
	}
	if !strings.Contains(result, "Name: John Smith") {
		t.Errorf("formatPatientContext() = %q, expected name line", result)
	}
}

func TestFallbackSystemPromptHasPatientPlaceholder(t *testing.T) {
	if !strings.Contains(fallbackSystemPrompt, "{{patient_context}}") {
		t.Error("fallback prompt should carry the patient_context placeholder")
	}
}

func TestCompletionResultStructure(t *testing.T) {
	result := CompletionResult{
		Content:          "hello",
		Provider:         "openai",
		Model:            "gpt-4o-mini",
		PromptTokens:     10,
		CompletionTokens: 5,
		LatencyMs:        120,
	}

	if result.PromptTokens+result.CompletionTokens != 15 {
		t.Errorf("token sum = %d, expected 15", result.PromptTokens+result.CompletionTokens)
	}
}

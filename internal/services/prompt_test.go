package services

import (
	"reflect"
	"testing"
)

func TestExtractPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "single placeholder",
			content:  "You are a clinic assistant.\n\n{{patient_context}}",
			expected: []string{"patient_context"},
		},
		{
			name:     "duplicates collapse, order kept",
			content:  "{{greeting}} {{patient_context}} {{greeting}}",
			expected: []string{"greeting", "patient_context"},
		},
		{
			name:     "whitespace inside braces",
			content:  "Intro {{ patient_context }} outro",
			expected: []string{"patient_context"},
		},
		{
			name:     "no placeholders",
			content:  "Plain prompt with {single} braces",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractPlaceholders(tt.content)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("extractPlaceholders() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPlaceholdersJSON(t *testing.T) {
	got := placeholdersJSON("Hello {{name}}, context: {{patient_context}}")
	expected := `["name","patient_context"]`
	if got != expected {
		t.Errorf("placeholdersJSON() = %q, expected %q", got, expected)
	}

	if got := placeholdersJSON("no tokens here"); got != "" {
		t.Errorf("placeholdersJSON() = %q, expected empty string", got)
	}
}

func TestPromptListParams_NilIsSystem(t *testing.T) {
	params := PromptListParams{
		Page:     1,
		PageSize: 10,
		Name:     "intake",
	}

	if params.IsSystem != nil {
		t.Error("IsSystem should be nil when no filter is set")
	}
	if params.Name != "intake" {
		t.Errorf("Name = %q, expected %q", params.Name, "intake")
	}
}

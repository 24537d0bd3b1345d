package services

import (
	"testing"
	"time"

	"github.com/danodev/daworks/internal/models"
)

func TestProjectListRequest_Defaults(t *testing.T) {
	req := &ProjectListRequest{}

	if req.Page != 0 {
		t.Errorf("default Page should be 0, got %d", req.Page)
	}
	if req.PageSize != 0 {
		t.Errorf("default PageSize should be 0, got %d", req.PageSize)
	}
}

func TestProjectListRequest_WithFilters(t *testing.T) {
	req := &ProjectListRequest{
		Page:      2,
		PageSize:  25,
		Name:      "Website Redesign",
		CompanyID: 7,
		Status:    "active",
		Stage:     "proposal",
	}

	if req.Page != 2 {
		t.Errorf("Page = %d, expected 2", req.Page)
	}
	if req.PageSize != 25 {
		t.Errorf("PageSize = %d, expected 25", req.PageSize)
	}
	if req.Name != "Website Redesign" {
		t.Errorf("Name = %q, expected %q", req.Name, "Website Redesign")
	}
	if req.CompanyID != 7 {
		t.Errorf("CompanyID = %d, expected 7", req.CompanyID)
	}
	if req.Status != "active" {
		t.Errorf("Status = %q, expected %q", req.Status, "active")
	}
	if req.Stage != "proposal" {
		t.Errorf("Stage = %q, expected %q", req.Stage, "proposal")
	}
}

func TestCreateProjectRequest_AllFields(t *testing.T) {
	contactID := uint(3)
	req := &CreateProjectRequest{
		CompanyID:   1,
		ContactID:   &contactID,
		Name:        "Clinic Onboarding",
		Description: "Roll out the intake flow",
		Status:      "active",
		Stage:       "negotiation",
		Value:       12500.50,
		Currency:    "EUR",
		StartDate:   "2025-01-15",
		DueDate:     "2025-03-01",
	}

	if req.CompanyID != 1 {
		t.Errorf("CompanyID = %d, expected 1", req.CompanyID)
	}
	if req.ContactID == nil || *req.ContactID != 3 {
		t.Error("ContactID should be 3")
	}
	if req.Value != 12500.50 {
		t.Errorf("Value = %f, expected 12500.50", req.Value)
	}
	if req.Currency != "EUR" {
		t.Errorf("Currency = %q, expected %q", req.Currency, "EUR")
	}
}

func TestUpdateProjectRequest_PartialUpdate(t *testing.T) {
	value := 9000.0

	req := &UpdateProjectRequest{
		Name:  "Updated Name",
		Stage: "won",
		Value: &value,
	}

	if req.Name != "Updated Name" {
		t.Errorf("Name = %q, expected %q", req.Name, "Updated Name")
	}
	if req.Stage != "won" {
		t.Errorf("Stage = %q, expected %q", req.Stage, "won")
	}
	if req.Value == nil || *req.Value != 9000.0 {
		t.Error("Value should be 9000.0")
	}
	if req.Status != "" {
		t.Errorf("Status should be empty, got %q", req.Status)
	}
	if req.ContactID != nil {
		t.Error("ContactID should be nil")
	}
}

func TestParseDatePtr(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectNil bool
		expectErr bool
		expected  time.Time
	}{
		{
			name:      "empty string yields nil",
			input:     "",
			expectNil: true,
		},
		{
			name:     "valid date",
			input:    "2025-06-30",
			expected: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "invalid format",
			input:     "30/06/2025",
			expectErr: true,
		},
		{
			name:      "not a date",
			input:     "soon",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDatePtr(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectNil {
				if result != nil {
					t.Errorf("parseDatePtr() = %v, expected nil", result)
				}
				return
			}
			if result == nil || !result.Equal(tt.expected) {
				t.Errorf("parseDatePtr() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestValidProjectStatus(t *testing.T) {
	valid := []string{"planning", "active", "on_hold", "completed", "cancelled"}
	for _, status := range valid {
		if !models.ValidProjectStatus(status) {
			t.Errorf("ValidProjectStatus(%q) = false, expected true", status)
		}
	}
	if models.ValidProjectStatus("archived") {
		t.Error("ValidProjectStatus(\"archived\") = true, expected false")
	}
	if models.ValidProjectStatus("") {
		t.Error("ValidProjectStatus(\"\") = true, expected false")
	}
}

func TestValidProjectStage(t *testing.T) {
	valid := []string{"lead", "qualified", "proposal", "negotiation", "won", "lost"}
	for _, stage := range valid {
		if !models.ValidProjectStage(stage) {
			t.Errorf("ValidProjectStage(%q) = false, expected true", stage)
		}
	}
	if models.ValidProjectStage("closed") {
		t.Error("ValidProjectStage(\"closed\") = true, expected false")
	}
}

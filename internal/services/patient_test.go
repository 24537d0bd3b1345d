package services

import "testing"

func TestPatientListRequest_WithFilters(t *testing.T) {
	req := &PatientListRequest{
		Page:     2,
		PageSize: 50,
		Name:     "Garcia",
		Source:   "intake_form",
		Status:   "new",
	}

	if req.Page != 2 {
		t.Errorf("Page = %d, expected 2", req.Page)
	}
	if req.PageSize != 50 {
		t.Errorf("PageSize = %d, expected 50", req.PageSize)
	}
	if req.Name != "Garcia" {
		t.Errorf("Name = %q, expected %q", req.Name, "Garcia")
	}
	if req.Source != "intake_form" {
		t.Errorf("Source = %q, expected %q", req.Source, "intake_form")
	}
	if req.Status != "new" {
		t.Errorf("Status = %q, expected %q", req.Status, "new")
	}
}

func TestUpdatePatientRequest_PartialUpdate(t *testing.T) {
	req := &UpdatePatientRequest{
		Phone:  "+34 600 123 456",
		Status: "active",
	}

	if req.Phone != "+34 600 123 456" {
		t.Errorf("Phone = %q, expected %q", req.Phone, "+34 600 123 456")
	}
	if req.Status != "active" {
		t.Errorf("Status = %q, expected %q", req.Status, "active")
	}
	if req.FirstName != "" {
		t.Errorf("FirstName should be empty, got %q", req.FirstName)
	}
	if req.DateOfBirth != "" {
		t.Errorf("DateOfBirth should be empty, got %q", req.DateOfBirth)
	}
}

func TestPatientCreate_InvalidDateOfBirth(t *testing.T) {
	s := NewPatientService(nil)

	_, err := s.Create(&CreatePatientRequest{
		FirstName:   "Ana",
		LastName:    "Garcia",
		DateOfBirth: "12.05.1990",
	})
	if err == nil {
		t.Error("expected an error for an unparseable date of birth")
	}
}

func TestSubmitIntake_RequiresContact(t *testing.T) {
	s := NewPatientService(nil)

	tests := []struct {
		name      string
		req       IntakeRequest
		expectErr bool
	}{
		{
			name:      "no email and no phone",
			req:       IntakeRequest{FirstName: "Ana", LastName: "Garcia"},
			expectErr: true,
		},
		{
			name:      "message alone is not contact info",
			req:       IntakeRequest{FirstName: "Ana", LastName: "Garcia", Message: "please call me"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SubmitIntake(&tt.req)
			if tt.expectErr && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

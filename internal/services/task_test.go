package services

import (
	"testing"

	"github.com/danodev/daworks/internal/models"
)

func TestTaskListRequest_WithFilters(t *testing.T) {
	req := &TaskListRequest{
		Page:       3,
		PageSize:   20,
		Status:     "in_progress",
		Priority:   "urgent",
		AssigneeID: 4,
		PatientID:  11,
	}

	if req.Page != 3 {
		t.Errorf("Page = %d, expected 3", req.Page)
	}
	if req.PageSize != 20 {
		t.Errorf("PageSize = %d, expected 20", req.PageSize)
	}
	if req.Status != "in_progress" {
		t.Errorf("Status = %q, expected %q", req.Status, "in_progress")
	}
	if req.Priority != "urgent" {
		t.Errorf("Priority = %q, expected %q", req.Priority, "urgent")
	}
	if req.AssigneeID != 4 {
		t.Errorf("AssigneeID = %d, expected 4", req.AssigneeID)
	}
	if req.ProjectID != 0 {
		t.Errorf("ProjectID should be 0, got %d", req.ProjectID)
	}
}

func TestCreateTaskRequest_AllFields(t *testing.T) {
	patientID := uint(8)
	assigneeID := uint(2)
	req := &CreateTaskRequest{
		Title:       "Call back about scheduling",
		Description: "Patient asked for an afternoon slot",
		PatientID:   &patientID,
		Status:      "todo",
		Priority:    "high",
		Type:        "call",
		AssigneeID:  &assigneeID,
		DueDate:     "2025-02-10",
	}

	if req.Title != "Call back about scheduling" {
		t.Errorf("Title = %q, expected %q", req.Title, "Call back about scheduling")
	}
	if req.PatientID == nil || *req.PatientID != 8 {
		t.Error("PatientID should be 8")
	}
	if req.ProjectID != nil {
		t.Error("ProjectID should be nil")
	}
	if req.AssigneeID == nil || *req.AssigneeID != 2 {
		t.Error("AssigneeID should be 2")
	}
	if req.Type != "call" {
		t.Errorf("Type = %q, expected %q", req.Type, "call")
	}
}

func TestUpdateTaskRequest_PartialUpdate(t *testing.T) {
	assigneeID := uint(5)
	req := &UpdateTaskRequest{
		Status:     "done",
		AssigneeID: &assigneeID,
	}

	if req.Status != "done" {
		t.Errorf("Status = %q, expected %q", req.Status, "done")
	}
	if req.AssigneeID == nil || *req.AssigneeID != 5 {
		t.Error("AssigneeID should be 5")
	}
	if req.Title != "" {
		t.Errorf("Title should be empty, got %q", req.Title)
	}
	if req.Priority != "" {
		t.Errorf("Priority should be empty, got %q", req.Priority)
	}
	if req.DueDate != "" {
		t.Errorf("DueDate should be empty, got %q", req.DueDate)
	}
}

func TestTaskAcknowledge_FirstStampWins(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Patient{},
		&models.Company{}, &models.Contact{}, &models.Project{}, &models.Task{})
	svc := NewTaskService(db)

	task, err := svc.Create(&CreateTaskRequest{Title: "Review intake form"}, 1)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if task.AcknowledgedAt != nil {
		t.Fatal("new task should not be acknowledged")
	}

	first, err := svc.Acknowledge(task.ID)
	if err != nil {
		t.Fatalf("Acknowledge error: %v", err)
	}
	if first.AcknowledgedAt == nil {
		t.Fatal("acknowledge should stamp the read receipt")
	}

	second, err := svc.Acknowledge(task.ID)
	if err != nil {
		t.Fatalf("second Acknowledge error: %v", err)
	}
	if second.AcknowledgedAt == nil || !second.AcknowledgedAt.Equal(*first.AcknowledgedAt) {
		t.Errorf("second acknowledge changed the stamp: %v != %v",
			second.AcknowledgedAt, first.AcknowledgedAt)
	}
}

func TestTaskCreate_InvalidDueDate(t *testing.T) {
	s := NewTaskService(nil)

	_, err := s.Create(&CreateTaskRequest{
		Title:   "Follow up",
		DueDate: "next tuesday",
	}, 1)
	if err == nil {
		t.Error("expected an error for an unparseable due date")
	}
}

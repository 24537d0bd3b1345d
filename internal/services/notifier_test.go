package services

import (
	"testing"
)

func TestNotifyBotListRequest_Defaults(t *testing.T) {
	req := &NotifyBotListRequest{}

	if req.Page != 0 {
		t.Errorf("default Page should be 0, got %d", req.Page)
	}
	if req.PageSize != 0 {
		t.Errorf("default PageSize should be 0, got %d", req.PageSize)
	}
}

func TestNotifyBotListRequest_WithValues(t *testing.T) {
	active := true
	req := &NotifyBotListRequest{
		Page:     2,
		PageSize: 20,
		Name:     "test",
		Type:     "slack",
		IsActive: &active,
	}

	if req.Page != 2 {
		t.Errorf("Page = %d, expected 2", req.Page)
	}
	if req.PageSize != 20 {
		t.Errorf("PageSize = %d, expected 20", req.PageSize)
	}
	if req.Name != "test" {
		t.Errorf("Name = %q, expected %q", req.Name, "test")
	}
	if req.Type != "slack" {
		t.Errorf("Type = %q, expected %q", req.Type, "slack")
	}
	if req.IsActive == nil || *req.IsActive != true {
		t.Error("IsActive should be true")
	}
}

func TestCreateNotifyBotRequest_AllFields(t *testing.T) {
	req := &CreateNotifyBotRequest{
		Name:          "Ops Channel",
		Type:          "slack",
		Webhook:       "https://hooks.slack.com/xxx",
		Secret:        "secret123",
		IsActive:      true,
		ErrorNotify:   true,
		DigestEnabled: false,
	}

	if req.Name != "Ops Channel" {
		t.Errorf("Name = %q, expected %q", req.Name, "Ops Channel")
	}
	if req.Type != "slack" {
		t.Errorf("Type = %q, expected %q", req.Type, "slack")
	}
	if req.Webhook != "https://hooks.slack.com/xxx" {
		t.Errorf("Webhook = %q, expected %q", req.Webhook, "https://hooks.slack.com/xxx")
	}
	if req.Secret != "secret123" {
		t.Errorf("Secret = %q, expected %q", req.Secret, "secret123")
	}
	if !req.IsActive {
		t.Error("IsActive should be true")
	}
	if !req.ErrorNotify {
		t.Error("ErrorNotify should be true")
	}
	if req.DigestEnabled {
		t.Error("DigestEnabled should be false")
	}
}

func TestUpdateNotifyBotRequest_PartialUpdate(t *testing.T) {
	active := false
	digest := true

	req := &UpdateNotifyBotRequest{
		Name:          "Updated Name",
		IsActive:      &active,
		DigestEnabled: &digest,
	}

	if req.Name != "Updated Name" {
		t.Errorf("Name = %q, expected %q", req.Name, "Updated Name")
	}
	if req.Type != "" {
		t.Errorf("Type should be empty, got %q", req.Type)
	}
	if req.IsActive == nil || *req.IsActive != false {
		t.Error("IsActive should be false")
	}
	if req.DigestEnabled == nil || *req.DigestEnabled != true {
		t.Error("DigestEnabled should be true")
	}
	if req.ErrorNotify != nil {
		t.Error("ErrorNotify should be nil")
	}
}

func TestNotifyBotTypes(t *testing.T) {
	validTypes := []string{
		"slack",
		"dingtalk",
		"feishu",
		"generic",
	}

	for _, botType := range validTypes {
		req := &CreateNotifyBotRequest{
			Name:    "Test Bot",
			Type:    botType,
			Webhook: "https://example.com/webhook",
		}

		if req.Type != botType {
			t.Errorf("Type = %q, expected %q", req.Type, botType)
		}
		if req.Name != "Test Bot" {
			t.Errorf("Name = %q, expected %q", req.Name, "Test Bot")
		}
	}
}

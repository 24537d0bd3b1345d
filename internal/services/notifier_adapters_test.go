package services

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name          string
		msg           string
		maxLen        int
		expectedParts int
	}{
		{
			name:          "short message no split",
			msg:           "short message",
			maxLen:        100,
			expectedParts: 1,
		},
		{
			name:          "exact length no split",
			msg:           "12345",
			maxLen:        5,
			expectedParts: 1,
		},
		{
			name:          "split into two parts",
			msg:           "1234567890",
			maxLen:        5,
			expectedParts: 2,
		},
		{
			name:          "split at newline",
			msg:           "line1\nline2\nline3",
			maxLen:        10,
			expectedParts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := splitMessage(tt.msg, tt.maxLen)
			if len(parts) != tt.expectedParts {
				t.Errorf("splitMessage() returned %d parts, expected %d", len(parts), tt.expectedParts)
			}
			for _, part := range parts {
				if len(part) > tt.maxLen && tt.expectedParts > 1 {
					t.Errorf("part length %d exceeds maxLen %d", len(part), tt.maxLen)
				}
			}
		})
	}
}

func TestSplitMessage_PreservesContent(t *testing.T) {
	original := "This is a test message that should be split into multiple parts for testing purposes."
	maxLen := 30

	parts := splitMessage(original, maxLen)

	reconstructed := strings.Join(parts, "")
	if reconstructed != original {
		t.Errorf("reconstructed message differs from original\noriginal: %q\nreconstructed: %q", original, reconstructed)
	}
}

func TestDingTalkSign(t *testing.T) {
	timestamp := int64(1699999999999)
	secret := "testsecret"

	sign := dingTalkSign(timestamp, secret)

	if sign == "" {
		t.Error("dingTalkSign should not return empty string")
	}
	if len(sign) < 20 {
		t.Errorf("dingTalkSign result seems too short: %s", sign)
	}

	sign2 := dingTalkSign(timestamp, secret)
	if sign != sign2 {
		t.Error("dingTalkSign should be deterministic")
	}

	sign3 := dingTalkSign(timestamp, "different")
	if sign == sign3 {
		t.Error("different secrets should produce different signatures")
	}
}

func TestFeishuSign(t *testing.T) {
	timestamp := int64(1699999999)
	secret := "testsecret"

	sign := feishuSign(timestamp, secret)

	if sign == "" {
		t.Error("feishuSign should not return empty string")
	}

	sign2 := feishuSign(timestamp, secret)
	if sign != sign2 {
		t.Error("feishuSign should be deterministic")
	}

	sign3 := feishuSign(timestamp, "different")
	if sign == sign3 {
		t.Error("different secrets should produce different signatures")
	}
}

func TestDingTalkWebhookURL_NoSecret(t *testing.T) {
	webhook := "https://oapi.dingtalk.com/robot/send?access_token=abc"

	result := dingTalkWebhookURL(webhook, "")

	if result != webhook {
		t.Errorf("dingTalkWebhookURL without secret should return webhook unchanged, got %q", result)
	}
}

func TestDingTalkWebhookURL_WithSecret(t *testing.T) {
	webhook := "https://oapi.dingtalk.com/robot/send?access_token=abc"

	result := dingTalkWebhookURL(webhook, "secret")

	if !strings.HasPrefix(result, webhook+"&timestamp=") {
		t.Errorf("signed URL should append timestamp, got %q", result)
	}
	if !strings.Contains(result, "&sign=") {
		t.Errorf("signed URL should append sign, got %q", result)
	}
}

func TestGetAdapter(t *testing.T) {
	tests := []struct {
		botType string
		want    string
	}{
		{"slack", "*services.slackAdapter"},
		{"dingtalk", "*services.dingtalkAdapter"},
		{"feishu", "*services.feishuAdapter"},
		{"generic", "*services.genericAdapter"},
		{"unknown", "*services.genericAdapter"},
	}

	for _, tt := range tests {
		t.Run(tt.botType, func(t *testing.T) {
			adapter := getAdapter(tt.botType)
			if got := fmt.Sprintf("%T", adapter); got != tt.want {
				t.Errorf("getAdapter(%q) = %s, expected %s", tt.botType, got, tt.want)
			}
		})
	}
}

func TestSlackBlocks(t *testing.T) {
	payload := slackBlocks("*Daily Digest*", "12 new leads")

	if payload["text"] != "*Daily Digest*" {
		t.Errorf("text = %v, expected header", payload["text"])
	}

	blocks, ok := payload["blocks"].([]map[string]interface{})
	if !ok {
		t.Fatal("blocks should be a slice of maps")
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	for _, block := range blocks {
		if block["type"] != "section" {
			t.Errorf("block type = %v, expected section", block["type"])
		}
	}
}

package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

// NotifierAdapter delivers messages in one platform's payload format.
// SendMarkdown is used for the daily digest, SendText for short alerts.
type NotifierAdapter interface {
	SendMarkdown(bot *models.NotifyBot, title, body string) error
	SendText(bot *models.NotifyBot, message string) error
}

// getAdapter returns the adapter for the given bot type
func getAdapter(botType string) NotifierAdapter {
	switch botType {
	case "dingtalk":
		return &dingtalkAdapter{}
	case "feishu":
		return &feishuAdapter{}
	case "slack":
		return &slackAdapter{}
	default:
		return &genericAdapter{}
	}
}

// --- Helper functions shared by adapters ---

var notifierHTTPClient = &http.Client{Timeout: 10 * time.Second}

func postJSONWithClient(client *http.Client, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	logger.Infof("[Notifier] POST %s, payload length: %d", webhookURL, len(body))

	req, err := http.NewRequest("POST", webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	logger.Infof("[Notifier] Response: %d - %s", resp.StatusCode, string(respBody))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func splitMessage(msg string, maxLen int) []string {
	if len(msg) <= maxLen {
		return []string{msg}
	}

	var parts []string
	remaining := msg

	for len(remaining) > 0 {
		if len(remaining) <= maxLen {
			parts = append(parts, remaining)
			break
		}

		chunk := remaining[:maxLen]
		breakPoint := maxLen

		for i := len(chunk) - 1; i > maxLen/2; i-- {
			if chunk[i] == '\n' {
				breakPoint = i + 1
				break
			}
		}

		parts = append(parts, remaining[:breakPoint])
		remaining = remaining[breakPoint:]
	}

	return parts
}

func dingTalkSign(timestamp int64, secret string) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, secret)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func feishuSign(timestamp int64, secret string) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, secret)
	h := hmac.New(sha256.New, []byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func dingTalkWebhookURL(webhook, secret string) string {
	if secret == "" {
		return webhook
	}
	timestamp := time.Now().UnixMilli()
	sign := dingTalkSign(timestamp, secret)
	return fmt.Sprintf("%s&timestamp=%d&sign=%s", webhook, timestamp, url.QueryEscape(sign))
}

// --- Adapter implementations ---

// slackAdapter posts Slack block kit payloads
type slackAdapter struct{}

func (a *slackAdapter) SendMarkdown(bot *models.NotifyBot, title, body string) error {
	header := fmt.Sprintf("*%s*", title)
	const maxLen = 3000

	if len(body) <= maxLen {
		return postJSONWithClient(notifierHTTPClient, bot.Webhook, slackBlocks(header, body))
	}

	parts := splitMessage(body, maxLen)
	for i, part := range parts {
		partHeader := header
		if i > 0 {
			partHeader = fmt.Sprintf("*%s [%d/%d]*", title, i+1, len(parts))
		} else {
			partHeader = fmt.Sprintf("%s\n_(%d parts total)_", header, len(parts))
		}
		if err := postJSONWithClient(notifierHTTPClient, bot.Webhook, slackBlocks(partHeader, part)); err != nil {
			return err
		}
	}
	return nil
}

func (a *slackAdapter) SendText(bot *models.NotifyBot, message string) error {
	payload := map[string]interface{}{
		"text": message,
	}
	return postJSONWithClient(notifierHTTPClient, bot.Webhook, payload)
}

func slackBlocks(header, body string) map[string]interface{} {
	return map[string]interface{}{
		"text": header,
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": header,
				},
			},
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": body,
				},
			},
		},
	}
}

// dingtalkAdapter posts DingTalk markdown payloads, signing the webhook
// URL when a secret is configured
type dingtalkAdapter struct{}

func (a *dingtalkAdapter) SendMarkdown(bot *models.NotifyBot, title, body string) error {
	const maxLen = 19000

	webhookURL := dingTalkWebhookURL(bot.Webhook, bot.Secret)

	if len(body) <= maxLen {
		payload := map[string]interface{}{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"title": title,
				"text":  body,
			},
		}
		return postJSONWithClient(notifierHTTPClient, webhookURL, payload)
	}

	parts := splitMessage(body, maxLen)
	for i, part := range parts {
		payload := map[string]interface{}{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"title": fmt.Sprintf("%s [%d/%d]", title, i+1, len(parts)),
				"text":  part,
			},
		}
		if err := postJSONWithClient(notifierHTTPClient, webhookURL, payload); err != nil {
			return err
		}
	}
	return nil
}

func (a *dingtalkAdapter) SendText(bot *models.NotifyBot, message string) error {
	webhookURL := dingTalkWebhookURL(bot.Webhook, bot.Secret)
	payload := map[string]interface{}{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"title": "Daworks Alert",
			"text":  message,
		},
	}
	return postJSONWithClient(notifierHTTPClient, webhookURL, payload)
}

// feishuAdapter posts Feishu text payloads, embedding a timestamp and
// signature when a secret is configured
type feishuAdapter struct{}

func (a *feishuAdapter) sendFeishu(webhook, secret, content string) error {
	if secret != "" {
		timestamp := time.Now().Unix()
		sign := feishuSign(timestamp, secret)
		payload := map[string]interface{}{
			"timestamp": fmt.Sprintf("%d", timestamp),
			"sign":      sign,
			"msg_type":  "text",
			"content": map[string]string{
				"text": content,
			},
		}
		return postJSONWithClient(notifierHTTPClient, webhook, payload)
	}
	payload := map[string]interface{}{
		"msg_type": "text",
		"content": map[string]string{
			"text": content,
		},
	}
	return postJSONWithClient(notifierHTTPClient, webhook, payload)
}

func (a *feishuAdapter) SendMarkdown(bot *models.NotifyBot, title, body string) error {
	msg := fmt.Sprintf("%s\n\n%s", title, body)
	const maxLen = 4000

	if len(msg) <= maxLen {
		return a.sendFeishu(bot.Webhook, bot.Secret, msg)
	}

	parts := splitMessage(msg, maxLen)
	for i, part := range parts {
		content := part
		if len(parts) > 1 {
			content = fmt.Sprintf("[%d/%d]\n\n%s", i+1, len(parts), part)
		}
		if err := a.sendFeishu(bot.Webhook, bot.Secret, content); err != nil {
			return err
		}
	}
	return nil
}

func (a *feishuAdapter) SendText(bot *models.NotifyBot, message string) error {
	return a.sendFeishu(bot.Webhook, bot.Secret, message)
}

// genericAdapter posts a flat JSON payload for custom receivers
type genericAdapter struct{}

func (a *genericAdapter) SendMarkdown(bot *models.NotifyBot, title, body string) error {
	payload := map[string]interface{}{
		"title": title,
		"text":  body,
	}
	return postJSONWithClient(notifierHTTPClient, bot.Webhook, payload)
}

func (a *genericAdapter) SendText(bot *models.NotifyBot, message string) error {
	payload := map[string]interface{}{
		"type":    "alert",
		"message": message,
	}
	return postJSONWithClient(notifierHTTPClient, bot.Webhook, payload)
}

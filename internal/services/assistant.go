package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/internal/models"
	"github.com/danodev/daworks/pkg/logger"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultOllamaModel    = "llama3"
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultGeminiModel    = "gemini-3.0-flash"

	defaultConversationTitle = "New conversation"

	// History sent to the provider is capped at the most recent turns.
	maxHistoryMessages = 40
)

// fallbackSystemPrompt is used when no default prompt template exists in
// the database.
const fallbackSystemPrompt = `You are a helpful assistant for a clinic operations team.
Answer questions about patients, projects and day-to-day operations clearly and concisely.

{{patient_context}}`

// ChatTurn is a single role/content pair sent to an LLM provider.
type ChatTurn struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

// CompletionResult holds a provider reply plus token accounting.
type CompletionResult struct {
	Content          string `json:"content"`
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	LatencyMs        int64  `json:"latency_ms"`
}

// AssistantService manages AI conversations and dispatches completion
// requests across the configured LLM providers.
type AssistantService struct {
	config *config.OpenAIConfig
	db     *gorm.DB
	usage  *AIUsageService
}

func NewAssistantService(cfg *config.OpenAIConfig, db *gorm.DB) *AssistantService {
	return &AssistantService{
		config: cfg,
		db:     db,
		usage:  NewAIUsageService(db),
	}
}

// CreateConversationRequest is the payload for starting a conversation.
type CreateConversationRequest struct {
	Title     string `json:"title"`
	PatientID *uint  `json:"patient_id"`
}

// CreateConversation starts a new conversation for the user, optionally
// linked to a patient.
func (s *AssistantService) CreateConversation(userID uint, req *CreateConversationRequest) (*models.Conversation, error) {
	conv := &models.Conversation{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		PatientID: req.PatientID,
	}

	if req.PatientID != nil {
		var patient models.Patient
		if err := s.db.First(&patient, *req.PatientID).Error; err != nil {
			return nil, fmt.Errorf("patient not found")
		}
		if conv.Title == "" {
			conv.Title = "Chat about " + patient.FirstName + " " + patient.LastName
		}
	}
	if conv.Title == "" {
		conv.Title = defaultConversationTitle
	}

	if err := s.db.Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently
// active first.
func (s *AssistantService) ListConversations(userID uint, page, pageSize int) ([]models.Conversation, int64, error) {
	var convs []models.Conversation
	var total int64

	query := s.db.Model(&models.Conversation{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("updated_at DESC").Offset(offset).Limit(pageSize).Find(&convs).Error; err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

// GetConversation returns one conversation with its messages in order.
func (s *AssistantService) GetConversation(userID, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Preload("Patient").
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if err != nil {
		return nil, fmt.Errorf("conversation not found")
	}
	return &conv, nil
}

// UpdateConversationTitle renames a conversation.
func (s *AssistantService) UpdateConversationTitle(userID, id uint, title string) (*models.Conversation, error) {
	conv, err := s.getOwnedConversation(userID, id)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if err := s.db.Model(conv).Update("title", truncateTitle(title)).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *AssistantService) DeleteConversation(userID, id uint) error {
	conv, err := s.getOwnedConversation(userID, id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.ConversationMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(conv).Error
	})
}

func (s *AssistantService) getOwnedConversation(userID, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&conv).Error; err != nil {
		return nil, fmt.Errorf("conversation not found")
	}
	return &conv, nil
}

// SendMessage appends a user message to the conversation, calls the LLM
// provider chain with the conversation history, and persists the reply.
// On provider failure the assistant message is stored with ErrorMessage
// set so the conversation remains usable.
func (s *AssistantService) SendMessage(ctx context.Context, userID, conversationID uint, content string, llmConfigID *uint) (*models.ConversationMessage, error) {
	conv, err := s.getOwnedConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}

	userMsg := &models.ConversationMessage{
		ConversationID: conv.ID,
		Role:           models.MessageRoleUser,
		Content:        content,
	}
	if err := s.db.Create(userMsg).Error; err != nil {
		return nil, err
	}

	if conv.Title == "" || conv.Title == defaultConversationTitle {
		s.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).Update("title", truncateTitle(content))
	} else {
		s.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).Update("updated_at", time.Now())
	}

	turns, err := s.buildTurns(conv)
	if err != nil {
		return nil, err
	}

	assistantMsg := &models.ConversationMessage{
		ConversationID: conv.ID,
		Role:           models.MessageRoleAssistant,
	}

	result, callErr := s.complete(ctx, turns, llmConfigID, &conv.ID)
	if callErr != nil {
		assistantMsg.ErrorMessage = truncateErrorMessage(callErr.Error())
		if err := s.db.Create(assistantMsg).Error; err != nil {
			logger.Errorf("[Assistant] Failed to store failed reply: %v", err)
		}
		return assistantMsg, callErr
	}

	assistantMsg.Content = result.Content
	assistantMsg.Provider = result.Provider
	assistantMsg.Model = result.Model
	if err := s.db.Create(assistantMsg).Error; err != nil {
		return nil, err
	}
	return assistantMsg, nil
}

// Completion runs a one-shot completion without persisting anything.
// Used by the standalone chat endpoint.
func (s *AssistantService) Completion(ctx context.Context, turns []ChatTurn, llmConfigID *uint) (*CompletionResult, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("messages are required")
	}
	return s.complete(ctx, turns, llmConfigID, nil)
}

// buildTurns assembles the system prompt plus the conversation history,
// excluding failed assistant messages.
func (s *AssistantService) buildTurns(conv *models.Conversation) ([]ChatTurn, error) {
	turns := []ChatTurn{{Role: "system", Content: s.systemPrompt(conv)}}

	var history []models.ConversationMessage
	err := s.db.Where("conversation_id = ?", conv.ID).
		Where("error_message = '' OR error_message IS NULL").
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	for _, msg := range history {
		turns = append(turns, ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	return turns, nil
}

// systemPrompt resolves the default prompt template and fills in the
// patient context for patient-linked conversations.
func (s *AssistantService) systemPrompt(conv *models.Conversation) string {
	prompt := fallbackSystemPrompt
	var tpl models.PromptTemplate
	if err := s.db.Where("is_default = ?", true).First(&tpl).Error; err == nil && tpl.Content != "" {
		prompt = tpl.Content
	}

	patientContext := ""
	if conv.PatientID != nil {
		var patient models.Patient
		if err := s.db.First(&patient, *conv.PatientID).Error; err == nil {
			patientContext = formatPatientContext(&patient)
		}
	}

	if strings.Contains(prompt, "{{patient_context}}") {
		prompt = strings.ReplaceAll(prompt, "{{patient_context}}", patientContext)
	} else if patientContext != "" {
		prompt += "\n\n" + patientContext
	}
	return strings.TrimSpace(prompt)
}

func formatPatientContext(p *models.Patient) string {
	var sb strings.Builder
	sb.WriteString("Patient context:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s %s\n", p.FirstName, p.LastName))
	if p.Email != "" {
		sb.WriteString("- Email: " + p.Email + "\n")
	}
	if p.Phone != "" {
		sb.WriteString("- Phone: " + p.Phone + "\n")
	}
	if p.DateOfBirth != nil {
		sb.WriteString("- Date of birth: " + p.DateOfBirth.Format("2006-01-02") + "\n")
	}
	if p.Gender != "" {
		sb.WriteString("- Gender: " + p.Gender + "\n")
	}
	sb.WriteString("- Source: " + p.Source + "\n")
	sb.WriteString("- Status: " + p.Status + "\n")
	if p.Notes != "" {
		sb.WriteString("- Notes: " + p.Notes + "\n")
	}
	return strings.TrimSpace(sb.String())
}

// complete walks the ordered LLM configs and returns the first
// successful result, recording a usage log entry per attempt.
func (s *AssistantService) complete(ctx context.Context, turns []ChatTurn, llmConfigID, conversationID *uint) (*CompletionResult, error) {
	configs := s.getOrderedLLMConfigs(llmConfigID)
	if len(configs) == 0 {
		return nil, fmt.Errorf("no LLM configuration available")
	}

	var lastErr error
	for _, cfg := range configs {
		start := time.Now()
		result, err := s.callProvider(ctx, &cfg, turns)
		latency := time.Since(start).Milliseconds()

		usageLog := &models.AIUsageLog{
			ConversationID: conversationID,
			LLMConfigID:    cfg.ID,
			Provider:       cfg.Provider,
			Model:          cfg.Model,
			LatencyMs:      latency,
			Success:        err == nil,
		}

		if err != nil {
			usageLog.ErrorMessage = truncateErrorMessage(err.Error())
			s.usage.Record(usageLog)
			logger.Warnf("[Assistant] Config %s (%s) failed: %v, trying next", cfg.Name, cfg.Provider, err)
			lastErr = err
			continue
		}

		result.LatencyMs = latency
		usageLog.Model = result.Model
		usageLog.PromptTokens = result.PromptTokens
		usageLog.CompletionTokens = result.CompletionTokens
		usageLog.TotalTokens = result.PromptTokens + result.CompletionTokens
		s.usage.Record(usageLog)
		return result, nil
	}
	return nil, fmt.Errorf("all LLM configs failed, last error: %w", lastErr)
}

// getOrderedLLMConfigs returns the configs to try in order: the
// requested config first, then the default, then remaining active
// configs by id, then the yaml fallback when the database has none.
func (s *AssistantService) getOrderedLLMConfigs(requestedID *uint) []models.LLMConfig {
	var ordered []models.LLMConfig
	seen := make(map[uint]bool)

	if requestedID != nil && *requestedID > 0 {
		var cfg models.LLMConfig
		if err := s.db.Where("id = ? AND is_active = ?", *requestedID, true).First(&cfg).Error; err == nil {
			ordered = append(ordered, cfg)
			seen[cfg.ID] = true
		}
	}

	var defaultCfg models.LLMConfig
	if err := s.db.Where("is_default = ? AND is_active = ?", true, true).First(&defaultCfg).Error; err == nil {
		if !seen[defaultCfg.ID] {
			ordered = append(ordered, defaultCfg)
			seen[defaultCfg.ID] = true
		}
	}

	var actives []models.LLMConfig
	if err := s.db.Where("is_active = ?", true).Order("id ASC").Find(&actives).Error; err == nil {
		for _, cfg := range actives {
			if !seen[cfg.ID] {
				ordered = append(ordered, cfg)
				seen[cfg.ID] = true
			}
		}
	}

	if len(ordered) == 0 && s.config != nil && s.config.APIKey != "" {
		ordered = append(ordered, models.LLMConfig{
			Name:     "fallback",
			Provider: "openai",
			BaseURL:  s.config.BaseURL,
			APIKey:   s.config.APIKey,
			Model:    s.config.Model,
		})
	}
	return ordered
}

func (s *AssistantService) callProvider(ctx context.Context, cfg *models.LLMConfig, turns []ChatTurn) (*CompletionResult, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return s.callOpenAI(ctx, cfg, turns)
	case "azure":
		return s.callAzure(ctx, cfg, turns)
	case "anthropic":
		return s.callAnthropic(ctx, cfg, turns)
	case "ollama":
		return s.callOllama(ctx, cfg, turns)
	case "gemini":
		return s.callGemini(ctx, cfg, turns)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func (s *AssistantService) callOpenAI(ctx context.Context, cfg *models.LLMConfig, turns []ChatTurn) (*CompletionResult, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = 0.3
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(turns),
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		Provider:         "openai",
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (s *AssistantService) callAzure(ctx context.Context, cfg *models.LLMConfig, turns []ChatTurn) (*CompletionResult, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("azure provider requires base_url")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("azure provider requires model (deployment name)")
	}

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	client := openai.NewClientWithConfig(clientCfg)

	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = 0.3
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    toOpenAIMessages(turns),
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("azure chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("azure returned no choices")
	}

	return &CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		Provider:         "azure",
		Model:            cfg.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func toOpenAIMessages(turns []ChatTurn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return msgs
}

func (s *AssistantService) callAnthropic(ctx context.Context, cfg *models.LLMConfig, turns []ChatTurn) (*CompletionResult, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var system string
	var msgs []anthropic.MessageParam
	for _, t := range turns {
		switch t.Role {
		case "system":
			if system != "" {
				system += "\n\n"
			}
			system += t.Content
		case models.MessageRoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &CompletionResult{
		Content:          sb.String(),
		Provider:         "anthropic",
		Model:            model,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

func (s *AssistantService) callOllama(ctx context.Context, cfg *models.LLMConfig, turns []ChatTurn) (*CompletionResult, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	msgs := make([]api.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, api.Message{Role: t.Role, Content: t.Content})
	}

	var sb strings.Builder
	var promptTokens, completionTokens int
	req := &api.ChatRequest{
		Model:    model,
		Messages: msgs,
	}
	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		if resp.Done {
			promptTokens = resp.PromptEvalCount
			completionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	return &CompletionResult{
		Content:          sb.String(),
		Provider:         "ollama",
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

func (s *AssistantService) callGemini(ctx context.Context, cfg *models.LLMConfig, turns []ChatTurn) (*CompletionResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(flattenTurns(turns)), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	return &CompletionResult{
		Content:  resp.Text(),
		Provider: "gemini",
		Model:    model,
	}, nil
}

// flattenTurns renders a chat history as a single prompt for providers
// without a native message API.
func flattenTurns(turns []ChatTurn) string {
	var sb strings.Builder
	for _, t := range turns {
		switch t.Role {
		case "system":
			sb.WriteString(t.Content)
		case models.MessageRoleAssistant:
			sb.WriteString("Assistant: " + t.Content)
		default:
			sb.WriteString("User: " + t.Content)
		}
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func truncateTitle(s string) string {
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:60])
	}
	return s
}

func truncateErrorMessage(s string) string {
	if len(s) > 500 {
		return s[:500]
	}
	return s
}

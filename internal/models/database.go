package models

import (
	"fmt"

	"github.com/danodev/daworks/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Company{},
		&Contact{},
		&Project{},
		&Patient{},
		&Task{},
		&Conversation{},
		&ConversationMessage{},
		&LLMConfig{},
		&PromptTemplate{},
		&AIUsageLog{},
		&Board{},
		&BoardElement{},
		&BoardComment{},
		&Mention{},
		&Notification{},
		&ChatServer{},
		&ChatChannel{},
		&ChannelMessage{},
		&ChatRole{},
		&ChatMember{},
		&Campaign{},
		&ExpenseLog{},
		&Lead{},
		&ImportJob{},
		&AccountClient{},
		&ClientDocument{},
		&AdhocRequirement{},
		&StatementItem{},
		&NotifyBot{},
		&DigestLog{},
		&SchedulerLock{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData() error {
	// Create the default assistant prompt
	var promptCount int64
	DB.Model(&PromptTemplate{}).Where("is_system = ?", true).Count(&promptCount)
	if promptCount == 0 {
		defaultPrompt := PromptTemplate{
			Name:        "General Assistant",
			Description: "Default system prompt for the staff AI assistant",
			Content: `You are a helpful assistant for a clinic operations team. You help staff
draft follow-up messages, summarize patient intake notes, and answer
general questions about CRM records.

Rules:
- Be concise and factual
- Never invent patient data
- When asked about a patient, only use the context provided in the
  conversation

Patient context (may be empty):
{{patient_context}}`,
			Variables: `["patient_context"]`,
			IsDefault: true,
			IsSystem:  true,
		}
		if err := DB.Create(&defaultPrompt).Error; err != nil {
			return err
		}
	}

	// Create default system configs
	defaultConfigs := []SystemConfig{
		{Key: "ldap_enabled", Value: "false", Type: "bool", Group: "ldap", Label: "Enable LDAP Authentication"},
		{Key: "ldap_host", Value: "", Type: "string", Group: "ldap", Label: "LDAP Server Host"},
		{Key: "ldap_port", Value: "389", Type: "int", Group: "ldap", Label: "LDAP Server Port"},
		{Key: "ldap_base_dn", Value: "", Type: "string", Group: "ldap", Label: "LDAP Base DN"},
		{Key: "ldap_bind_dn", Value: "", Type: "string", Group: "ldap", Label: "LDAP Bind DN"},
		{Key: "ldap_bind_password", Value: "", Type: "string", Group: "ldap", Label: "LDAP Bind Password"},
		{Key: "ldap_user_filter", Value: "(uid=%s)", Type: "string", Group: "ldap", Label: "LDAP User Filter"},
		{Key: "ldap_use_ssl", Value: "false", Type: "bool", Group: "ldap", Label: "Use SSL/TLS"},
		{Key: "digest_enabled", Value: "false", Type: "bool", Group: "digest", Label: "Enable Daily Marketing Digest"},
		{Key: "digest_time", Value: "09:00", Type: "string", Group: "digest", Label: "Daily Digest Delivery Time"},
		{Key: "default_currency", Value: "USD", Type: "string", Group: "general", Label: "Default Currency"},
		{Key: "session_hours", Value: "24", Type: "int", Group: "general", Label: "Login Session Hours"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("`key` = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

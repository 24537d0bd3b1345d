package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danodev/daworks/internal/config"
)

// One-off migration: older templates used a bare {{context}} slot,
// the assistant now injects {{patient_context}}. Run without flags to
// preview, with --update to write.

type PromptTemplate struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	Content   string `gorm:"type:text"`
	Variables string `gorm:"size:500"`
}

func (PromptTemplate) TableName() string { return "prompt_templates" }

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := openDB(cfg)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	var prompts []PromptTemplate
	if err := db.Order("id").Find(&prompts).Error; err != nil {
		fmt.Printf("Failed to read prompts: %v\n", err)
		os.Exit(1)
	}

	apply := len(os.Args) > 1 && os.Args[1] == "--update"
	fmt.Printf("Found %d prompt templates\n\n", len(prompts))

	changed := 0
	for _, p := range prompts {
		content := migrateContent(p.Content)
		if content == p.Content {
			fmt.Printf("  ok       %d %s\n", p.ID, p.Name)
			continue
		}
		changed++
		if !apply {
			fmt.Printf("  would fix %d %s\n", p.ID, p.Name)
			continue
		}

		// Content changed, so the stored placeholder list is stale too.
		updates := map[string]interface{}{
			"content":   content,
			"variables": variablesJSON(content),
		}
		if err := db.Model(&PromptTemplate{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			fmt.Printf("  FAILED   %d %s: %v\n", p.ID, p.Name, err)
			continue
		}
		fmt.Printf("  fixed    %d %s\n", p.ID, p.Name)
	}

	if !apply && changed > 0 {
		fmt.Printf("\n%d templates need migration, rerun with --update to write\n", changed)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}
	return gorm.Open(dialector, &gorm.Config{})
}

// migrateContent rewrites the legacy {{context}} placeholder. Templates
// already carrying {{patient_context}} are left alone even if they also
// mention {{context}}, those were edited by hand after the rename.
func migrateContent(content string) string {
	if strings.Contains(content, "{{patient_context}}") {
		return content
	}
	return strings.ReplaceAll(content, "{{context}}", "{{patient_context}}")
}

// variablesJSON mirrors the placeholder extraction the prompt service
// does on save.
func variablesJSON(content string) string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	if len(names) == 0 {
		return ""
	}
	b, err := json.Marshal(names)
	if err != nil {
		return ""
	}
	return string(b)
}

package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danodev/daworks/internal/services"
	"github.com/gin-gonic/gin"
)

const auditBodyLimit = 2000

// auditModules maps the first path segment of an admin route to the
// module name recorded in system_logs.
var auditModules = map[string]string{
	"users":         "User",
	"llm-configs":   "LLMConfig",
	"prompts":       "Prompt",
	"notify-bots":   "NotifyBot",
	"system-logs":   "SystemLog",
	"system-config": "SystemConfig",
	"digests":       "Digest",
}

// maskedKeys are request body fields whose values never reach the audit
// trail.
var maskedKeys = map[string]bool{
	"password":     true,
	"old_password": true,
	"new_password": true,
	"api_key":      true,
	"secret":       true,
	"token":        true,
	"bind_pass":    true,
}

// AuditLog records admin write operations (POST/PUT/DELETE) to
// system_logs, with sensitive body fields masked.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			body = maskAuditBody(raw)
		}

		c.Next()

		userID := GetUserID(c)
		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		path := c.Request.URL.Path
		status := c.Writer.Status()
		message := fmt.Sprintf("%s %s %s (%d)", GetUsername(c), method, path, status)

		services.LogInfo(auditModule(c.FullPath()), auditAction(method), message,
			uid, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
				"method": method,
				"path":   path,
				"status": status,
				"body":   body,
				"audit":  true,
			})
	}
}

func auditModule(fullPath string) string {
	segment := strings.TrimPrefix(fullPath, "/api/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	if module, ok := auditModules[segment]; ok {
		return module
	}
	if segment == "" {
		return "Admin"
	}
	return segment
}

func auditAction(method string) string {
	switch method {
	case "POST":
		return "Create"
	case "PUT":
		return "Update"
	case "DELETE":
		return "Delete"
	}
	return method
}

// maskAuditBody renders the request body for the audit trail. JSON
// bodies get their sensitive top-level fields replaced; anything else
// (multipart uploads, bad JSON) is recorded by size only.
func maskAuditBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Sprintf("[%d bytes, not JSON]", len(raw))
	}

	for key := range fields {
		if maskedKeys[strings.ToLower(key)] {
			fields[key] = "***"
		}
	}

	masked, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf("[%d bytes]", len(raw))
	}
	if len(masked) > auditBodyLimit {
		return string(masked[:auditBodyLimit]) + "...[truncated]"
	}
	return string(masked)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danodev/daworks/internal/utils"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")
}

func protectedRouter() *gin.Engine {
	router := gin.New()
	router.Use(AuthRequired())
	router.GET("/me", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"user_id":  GetUserID(c),
			"username": GetUsername(c),
			"role":     GetRole(c),
		})
	})
	return router
}

func getMe(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		token  string
		ok     bool
	}{
		{"well formed", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing header", "", "", false},
		{"no scheme", "abc.def.ghi", "", false},
		{"wrong scheme", "Basic abc.def.ghi", "", false},
		{"scheme only", "Bearer", "", false},
		{"empty token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request, _ = http.NewRequest("GET", "/", nil)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			token, ok := bearerToken(c)
			if ok != tt.ok {
				t.Errorf("bearerToken(%q) ok = %v, expected %v", tt.header, ok, tt.ok)
			}
			if token != tt.token {
				t.Errorf("bearerToken(%q) = %q, expected %q", tt.header, token, tt.token)
			}
		})
	}
}

func TestAuthRequired_RejectsBadHeaders(t *testing.T) {
	router := protectedRouter()

	headers := []string{
		"",
		"some-raw-token",
		"Basic dXNlcjpwYXNz",
		"Bearer",
		"Bearer not.a.jwt",
	}

	for _, header := range headers {
		if w := getMe(router, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, expected %d", header, w.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthRequired_RejectsExpiredToken(t *testing.T) {
	token, err := utils.GenerateToken(7, "dana", "user", -1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if w := getMe(protectedRouter(), "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthRequired_PassesClaimsToHandler(t *testing.T) {
	token, err := utils.GenerateToken(7, "dana", "user", 1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	w := getMe(protectedRouter(), "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	for _, want := range []string{`"user_id":7`, `"username":"dana"`, `"role":"user"`} {
		if !strings.Contains(body, want) {
			t.Errorf("response %q missing %q", body, want)
		}
	}
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", "admin", http.StatusOK},
		{"regular user forbidden", "user", http.StatusForbidden},
		{"missing role forbidden", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(ContextRole, tt.role)
				}
				c.Next()
			})
			router.Use(AdminRequired())
			router.GET("/admin", func(c *gin.Context) {
				c.JSON(200, gin.H{"status": "ok"})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/admin", nil)
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("role %q: status = %d, expected %d", tt.role, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestContextGetters_MissingValues(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if id := GetUserID(c); id != 0 {
		t.Errorf("GetUserID on empty context = %d, expected 0", id)
	}
	if name := GetUsername(c); name != "" {
		t.Errorf("GetUsername on empty context = %q, expected empty", name)
	}
	if role := GetRole(c); role != "" {
		t.Errorf("GetRole on empty context = %q, expected empty", role)
	}
}

func TestContextGetters_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextUserID, "not-a-uint")
	c.Set(ContextUsername, 123)
	c.Set(ContextRole, []string{"admin"})

	if id := GetUserID(c); id != 0 {
		t.Errorf("GetUserID with foreign value = %d, expected 0", id)
	}
	if name := GetUsername(c); name != "" {
		t.Errorf("GetUsername with foreign value = %q, expected empty", name)
	}
	if role := GetRole(c); role != "" {
		t.Errorf("GetRole with foreign value = %q, expected empty", role)
	}
}

func TestContextGetters_SetValues(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextUserID, uint(42))
	c.Set(ContextUsername, "ops")
	c.Set(ContextRole, "admin")

	if id := GetUserID(c); id != 42 {
		t.Errorf("GetUserID = %d, expected 42", id)
	}
	if name := GetUsername(c); name != "ops" {
		t.Errorf("GetUsername = %q, expected %q", name, "ops")
	}
	if role := GetRole(c); role != "admin" {
		t.Errorf("GetRole = %q, expected %q", role, "admin")
	}
}

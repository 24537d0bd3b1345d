package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.POST("/api/public/intake", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestCORS_DefaultAllowsAnyOrigin(t *testing.T) {
	router := corsRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/public/intake", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", w.Code, http.StatusOK)
	}
	if allow := w.Header().Get("Access-Control-Allow-Origin"); allow == "" {
		t.Error("Access-Control-Allow-Origin should be set for the default config")
	}
}

func TestCORS_ExplicitOriginList(t *testing.T) {
	router := corsRouter([]string{"https://promo.daworks.example"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/public/intake", nil)
	req.Header.Set("Origin", "https://promo.daworks.example")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected %d", w.Code, http.StatusOK)
	}
	if allow := w.Header().Get("Access-Control-Allow-Origin"); allow != "https://promo.daworks.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected the listed origin", allow)
	}
	if creds := w.Header().Get("Access-Control-Allow-Credentials"); creds != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, expected %q", creds, "true")
	}
}

func TestCORS_RejectsUnlistedOrigin(t *testing.T) {
	router := corsRouter([]string{"https://promo.daworks.example"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/public/intake", nil)
	req.Header.Set("Origin", "https://rogue.example")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, expected %d for unlisted origin", w.Code, http.StatusForbidden)
	}
}

func TestCORS_IntakePreflight(t *testing.T) {
	router := corsRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/public/intake", nil)
	req.Header.Set("Origin", "https://promo.daworks.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, expected 200 or 204", w.Code)
	}
	if headers := w.Header().Get("Access-Control-Allow-Headers"); headers == "" {
		t.Error("Access-Control-Allow-Headers should be set on preflight")
	}
}

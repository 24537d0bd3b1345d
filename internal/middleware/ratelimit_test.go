package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/intake", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func doIntake(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/intake", nil)
	req.RemoteAddr = ip + ":40000"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_WithinBudget(t *testing.T) {
	r := limitedRouter(NewRateLimiter(10, 10))

	if w := doIntake(r, "198.51.100.7"); w.Code != http.StatusOK {
		t.Errorf("first request: status = %d, expected %d", w.Code, http.StatusOK)
	}
}

func TestRateLimiter_OverBudget(t *testing.T) {
	r := limitedRouter(NewRateLimiter(1, 2))

	var last *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		last = doIntake(r, "198.51.100.8")
	}

	if last.Code != http.StatusTooManyRequests {
		t.Errorf("status after burst = %d, expected %d", last.Code, http.StatusTooManyRequests)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("429 should carry a Retry-After header")
	}
}

func TestRateLimiter_BudgetIsPerIP(t *testing.T) {
	r := limitedRouter(NewRateLimiter(1, 1))

	if w := doIntake(r, "203.0.113.1"); w.Code != http.StatusOK {
		t.Errorf("first IP: status = %d, expected %d", w.Code, http.StatusOK)
	}
	// A different IP still has its own full burst.
	if w := doIntake(r, "203.0.113.2"); w.Code != http.StatusOK {
		t.Errorf("second IP: status = %d, expected %d", w.Code, http.StatusOK)
	}
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	rl.allow("203.0.113.9")
	rl.mu.Lock()
	rl.buckets["203.0.113.9"].lastSeen = time.Now().Add(-10 * time.Minute)
	rl.lastSweep = time.Now().Add(-10 * time.Minute)
	rl.mu.Unlock()

	rl.allow("203.0.113.10")

	rl.mu.Lock()
	_, stale := rl.buckets["203.0.113.9"]
	rl.mu.Unlock()
	if stale {
		t.Error("idle bucket should have been swept")
	}
}

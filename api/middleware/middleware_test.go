package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(2 * time.Second))

	var remaining time.Duration
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		var dl time.Time
		dl, hasDeadline = c.Request.Context().Deadline()
		remaining = time.Until(dl)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !hasDeadline {
		t.Fatal("request context has no deadline")
	}
	if remaining <= 0 || remaining > 2*time.Second {
		t.Errorf("remaining = %v, want within (0, 2s]", remaining)
	}
}

func TestTimeout_DisabledForNonPositive(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(0))

	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if hasDeadline {
		t.Error("Timeout(0) should not set a deadline")
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != models.ErrCodeInternal || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func adminRouter(key string) *gin.Engine {
	r := gin.New()
	r.GET("/admin", RequireAdminKey(key), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequireAdminKey(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no key configured allows all requests",
			key:            "",
			authHeader:     "",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "valid key",
			key:            "test-secret-key",
			authHeader:     "Bearer test-secret-key",
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "missing header",
			key:            "test-secret-key",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_REQUIRED",
		},
		{
			name:           "no bearer scheme",
			key:            "test-secret-key",
			authHeader:     "test-secret-key",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "AUTH_INVALID_FORMAT",
		},
		{
			name:           "wrong key",
			key:            "test-secret-key",
			authHeader:     "Bearer nope",
			expectedStatus: http.StatusForbidden,
			expectedBody:   "AUTH_INVALID_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := adminRouter(tt.key)
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestRateLimitBlocksBursts(t *testing.T) {
	r := gin.New()
	r.POST("/open", RateLimit(1, 2), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/open", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("fifth burst request returned %d, want 429", last)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/open", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("fresh client got %d, want 200", w.Code)
	}
}

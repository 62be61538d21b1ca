package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainAccount "bloodlink/internal/domain/account"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("reuses caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := serve(r, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("mints id when missing", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
		w := serve(r, req)

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":40000"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"))
}

func TestRateLimiterPrune(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	require.True(t, limiter.Allow("10.0.0.1"))

	limiter.prune(time.Now())
	assert.Len(t, limiter.limiters, 1)

	limiter.prune(time.Now().Add(time.Minute))
	assert.Empty(t, limiter.limiters)
}

func TestRoleMiddleware(t *testing.T) {
	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(RoleKey, role)
			}
		})
		r.GET("/", RoleMiddleware(domainAccount.RoleDonor, domainAccount.RoleHospital), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		return r
	}

	tests := []struct {
		role string
		want int
	}{
		{"donor", http.StatusNoContent},
		{"hospital", http.StatusNoContent},
		{"patient", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			w := serve(newRouter(tt.role), httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(false))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

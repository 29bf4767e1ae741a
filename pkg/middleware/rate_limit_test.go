package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/metrics"
)

func serve(r *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/ok"))
	require.Equal(t, http.StatusOK, serve(r, "/ok"))
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/limited"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/limited"))

	// 2 rps refills one token in 500ms
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, serve(r, "/limited"))
}

func TestRateLimitMiddleware_UsesSubjectWhenPresent(t *testing.T) {
	sub := "stu-1"
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(SubjectKey, sub)
		c.Next()
	})
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/u"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/u"))

	// another subject from the same address has its own bucket
	sub = "stu-2"
	require.Equal(t, http.StatusOK, serve(r, "/u"))
}

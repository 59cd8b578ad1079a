package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, body []byte) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(body, &res))
	return res
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    response.ErrCode
		message string
	}{
		{"validation", apperr.Validation("Invalid ID provided", "id"), http.StatusBadRequest, response.ErrValidation, "Invalid ID provided"},
		{"not found", apperr.NotFound("Subject", 3), http.StatusNotFound, response.ErrNotFound, "Subject with ID 3 not found"},
		{"conflict", apperr.Conflict(apperr.ReasonDuplicateName, "Subject with this name already exists"), http.StatusBadRequest, response.ErrConflict, "Subject with this name already exists"},
		{"missing parent", apperr.Conflict(apperr.ReasonMissingParent, "Subject does not exist"), http.StatusNotFound, response.ErrNotFound, "Subject does not exist"},
		{"storage", apperr.Storage("create subject", errors.New("dial tcp: refused")), http.StatusInternalServerError, response.ErrInternal, "Internal server error occurred"},
		{"unknown kind", &apperr.Error{Message: "mystery"}, http.StatusInternalServerError, response.ErrUnexpected, "An unexpected error occurred"},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, response.ErrUnexpected, "An unexpected error occurred"},
		{"wrapped", errors.Join(errors.New("ctx"), apperr.NotFound("Competency", 1)), http.StatusNotFound, response.ErrNotFound, "Competency with ID 1 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler(zerolog.Nop()))
			r.GET("/x", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := serve(r, http.MethodGet, "/x", nil)
			assert.Equal(t, tt.status, w.Code)

			res := envelope(t, w.Body.Bytes())
			assert.False(t, res.Success)
			assert.Equal(t, tt.code, res.Error)
			assert.Equal(t, tt.message, res.Message)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestErrorHandlerValidationFields(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zerolog.Nop()))
	r.POST("/x", func(c *gin.Context) {
		_ = c.Error(apperr.ValidationFields(map[string]string{
			"name":  "Subject name is required",
			"marks": "Marks cannot exceed 10",
		}))
	})

	w := serve(r, http.MethodPost, "/x", nil)
	res := envelope(t, w.Body.Bytes())
	assert.Equal(t, "Marks cannot exceed 10; Subject name is required", res.Message)
	assert.Len(t, res.Fields, 2)
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		_ = c.Error(errors.New("late"))
	})

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestRouteNotFound(t *testing.T) {
	r := gin.New()
	r.NoRoute(RouteNotFound(zerolog.Nop()))

	w := serve(r, http.MethodPatch, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	res := envelope(t, w.Body.Bytes())
	assert.Equal(t, "Route PATCH /api/nothing not found", res.Message)
	assert.Equal(t, response.ErrRouteNotFound, res.Error)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("nil map") })

	w := serve(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error occurred", envelope(t, w.Body.Bytes()).Message)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(response.RequestIDMiddleware(), RequestLogger(zerolog.New(&buf)))
	r.GET("/subjects", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, http.MethodGet, "/subjects?x=1", map[string]string{"X-Request-ID": "abc"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))
	assert.Equal(t, "Request completed", done["message"])
	assert.Equal(t, float64(http.StatusNoContent), done["status"])
	assert.Equal(t, "abc", done["request_id"])
	assert.Contains(t, lines[0], `"query":"x=1"`)
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.Use(NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "no-store", serve(r, http.MethodGet, "/", nil).Header().Get("Cache-Control"))
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "buckets are per client")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"), "refilled after one interval")

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := gin.New()
	r.POST("/subjects", NewRateLimiter(ctx, 1, time.Hour).Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/subjects", nil).Code)
	w := serve(r, http.MethodPost, "/subjects", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, envelope(t, w.Body.Bytes()).Error)
}

func TestBrotli(t *testing.T) {
	big := strings.Repeat("competency ", 500)

	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{MinLength: 64, SkipPaths: []string{"/api/export"}}))
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/export", func(c *gin.Context) { c.String(http.StatusOK, big) })

	t.Run("compresses large bodies", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/big", map[string]string{"Accept-Encoding": "gzip, br"})
		assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
		assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))

		plain, err := io.ReadAll(brotli.NewReader(w.Body))
		require.NoError(t, err)
		assert.Equal(t, big, string(plain))
	})

	t.Run("passes small bodies through", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/small", map[string]string{"Accept-Encoding": "br"})
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("client without br", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/big", map[string]string{"Accept-Encoding": "gzip"})
		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, big, w.Body.String())
	})

	t.Run("explicit refusal", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/big", map[string]string{"Accept-Encoding": "br;q=0"})
		assert.Empty(t, w.Header().Get("Content-Encoding"))
	})

	t.Run("skipped path", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/export", map[string]string{"Accept-Encoding": "br"})
		assert.Empty(t, w.Header().Get("Content-Encoding"))
	})
}

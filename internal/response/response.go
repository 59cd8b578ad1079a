package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TimestampFormat is ISO 8601 with millisecond precision in UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data"`
	Error     ErrCode           `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId"`
	Timestamp string            `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code, message and data.
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

// Fail sends an error response. An empty message falls back to the code's default text.
func Fail(c *gin.Context, statusCode int, code ErrCode, message string) {
	c.JSON(statusCode, failure(c, code, message, nil))
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, message string, fields map[string]string) {
	c.JSON(statusCode, failure(c, code, message, fields))
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode, message string) {
	c.AbortWithStatusJSON(statusCode, failure(c, code, message, nil))
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func failure(c *gin.Context, code ErrCode, message string, fields map[string]string) Response {
	if message == "" {
		message = GetMessage(code)
	}
	return Response{
		Success:   false,
		Message:   message,
		Error:     code,
		Fields:    fields,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	}
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // Fallback if middleware not applied
	}
	return id
}

func timestamp() string {
	return time.Now().UTC().Format(TimestampFormat)
}

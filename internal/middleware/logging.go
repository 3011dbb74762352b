// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/digital-original/internal/models"
	"github.com/javajoker/digital-original/internal/utils"
)

const maxAuditBody = 64 << 10

// AuditLogMiddleware records every mutating request. A nil db disables it.
func AuditLogMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for GET requests and health checks
		if db == nil || c.Request.Method == "GET" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		var requestBody []byte
		truncated := false
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			// The handler always gets the full stream; only the audit copy is capped.
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), c.Request.Body))
			if len(requestBody) > maxAuditBody {
				requestBody = requestBody[:maxAuditBody]
				truncated = true
			}
		}

		c.Next()

		auditLog := newAuditLog(c, requestBody, truncated)

		// Save audit log asynchronously
		go func() {
			if err := db.Create(auditLog).Error; err != nil {
				logrus.WithError(err).Error("Failed to create audit log")
			}
		}()
	}
}

// newAuditLog builds the record for a finished request. A truncated body is
// not parsed; the record only notes that it was cut.
func newAuditLog(c *gin.Context, body []byte, truncated bool) *models.AuditLog {
	var requestData map[string]interface{}
	switch {
	case truncated:
		requestData = map[string]interface{}{"truncated": true, "captured_bytes": len(body)}
	case len(body) > 0:
		json.Unmarshal(body, &requestData)
	}

	auditLog := &models.AuditLog{
		Action:       c.Request.Method + " " + c.FullPath(),
		ResourceType: extractResourceType(c.Request.URL.Path),
		ResourceID:   extractResourceID(c.Request.URL.Path),
		Status:       c.Writer.Status(),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		NewValues:    models.JSONB(requestData),
	}
	if caller, ok := utils.GetCallerFromContext(c); ok {
		auditLog.Caller = caller.Hex()
	}
	return auditLog
}

func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "v1" {
		return parts[1]
	}
	if len(parts) >= 1 {
		return parts[0]
	}
	return "unknown"
}

// extractResourceID returns the first address in the path, plus the token id
// that follows "tokens" when there is one.
func extractResourceID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	id := ""
	for i, part := range parts {
		if id == "" && common.IsHexAddress(part) {
			id = part
		}
		if part == "tokens" && i+1 < len(parts) && id != "" {
			return id + "/" + parts[i+1]
		}
	}
	return id
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if caller, ok := utils.GetCallerFromContext(c); ok {
			fields["caller"] = caller.Hex()
		}

		entry := logrus.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request processed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
)

// LoggerConfig controls request logging
type LoggerConfig struct {
	LogRequestBody bool
	MaxBodySize    int64 // bytes of body kept for logging
	SkipPaths      []string
}

// DefaultLoggerConfig keeps bodies small and skips probes
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogRequestBody: true,
		MaxBodySize:    2048,
		SkipPaths:      []string{"/health", "/ping"},
	}
}

// RequestLogger logs one line per request plus the error body for 4xx/5xx.
// Multipart bodies (photos) are never logged.
func RequestLogger(log *logger.Logger, config LoggerConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		contentType := c.GetHeader("Content-Type")

		var requestBody string
		if config.LogRequestBody && isJSON(contentType) && c.Request.Body != nil && c.Request.ContentLength > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[body too large to log]"
			} else if raw, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize)); err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
				requestBody = sanitizeJSON(raw)
			}
		}

		writer := &limitedResponseWriter{ResponseWriter: c.Writer, maxSize: config.MaxBodySize}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		line := fmt.Sprintf("%s %s -> %d (%v, %s) ip=%s",
			c.Request.Method, path, status, time.Since(start).Round(time.Microsecond),
			formatSize(writer.size), c.ClientIP())
		if userID := c.GetString("userID"); userID != "" {
			line += " user=" + userID
		}
		if requestBody != "" {
			line += " body=" + requestBody
		}

		switch {
		case status >= 500:
			log.Error("%s response=%s", line, truncateString(writer.body.String(), 300))
		case status >= 400:
			log.Warn("%s response=%s", line, truncateString(writer.body.String(), 300))
		default:
			log.Info("%s", line)
		}
	}
}

// limitedResponseWriter keeps at most maxSize bytes of the response for logging
type limitedResponseWriter struct {
	gin.ResponseWriter
	body    bytes.Buffer
	size    int64
	maxSize int64
}

func (w *limitedResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	if w.size+int64(n) <= w.maxSize {
		w.body.Write(b[:n])
	}
	w.size += int64(n)
	return n, err
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

func formatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1fMB", float64(bytes)/(1024*1024))
}

func sanitizeJSON(raw []byte) string {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return truncateString(string(raw), 200)
	}
	out, err := json.Marshal(hideSensitiveFields(data))
	if err != nil {
		return "[unprintable body]"
	}
	return truncateString(string(out), 200)
}

func hideSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitiveField(strings.ToLower(key)) {
				result[key] = "********"
			} else {
				result[key] = hideSensitiveFields(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = hideSensitiveFields(item)
		}
		return result
	default:
		return v
	}
}

func isSensitiveField(field string) bool {
	for _, s := range []string{"password", "token", "secret", "key", "auth", "credential"} {
		if strings.Contains(field, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

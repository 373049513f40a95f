package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/services"
)

// AuditLog records write operations (POST/PUT/PATCH/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "PATCH" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (up to 2000 chars for Extra)
		var bodySnippet string
		if c.Request.Body != nil && !strings.HasPrefix(c.ContentType(), "multipart/") {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		userID := GetUserID(c)
		username := GetUsername(c)
		status := c.Writer.Status()

		module, action := parseRouteInfo(c.FullPath(), method)

		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		message := fmt.Sprintf("%s %s %s -> %d", username, method, c.Request.URL.Path, status)

		services.LogInfo(module, action, message, uid, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
			"method": method,
			"path":   c.Request.URL.Path,
			"status": status,
			"body":   bodySnippet,
			"audit":  true,
		})
	}
}

// parseRouteInfo maps a route path to an audit module/action pair.
func parseRouteInfo(fullPath, method string) (string, string) {
	module := "api"
	switch {
	case strings.Contains(fullPath, "/auth"):
		module = "auth"
	case strings.Contains(fullPath, "/projects"):
		module = "projects"
	case strings.Contains(fullPath, "/stages"):
		module = "stages"
	case strings.Contains(fullPath, "/tasks"):
		module = "tasks"
	case strings.Contains(fullPath, "/attachments"):
		module = "attachments"
	case strings.Contains(fullPath, "/meetings"):
		module = "meetings"
	case strings.Contains(fullPath, "/system"):
		module = "system"
	}

	action := "update"
	switch method {
	case "POST":
		action = "create"
	case "DELETE":
		action = "delete"
	}
	return module, action
}

var sensitiveKeys = []string{"password", "bind_password", "secret", "token"}

// maskSensitiveFields blanks the values of credential-like JSON fields in a
// body snippet. Best effort string surgery; the snippet is diagnostic only.
func maskSensitiveFields(body string) string {
	for _, key := range sensitiveKeys {
		idx := 0
		for {
			pos := strings.Index(body[idx:], `"`+key+`"`)
			if pos == -1 {
				break
			}
			start := idx + pos + len(key) + 2
			colon := strings.Index(body[start:], ":")
			if colon == -1 {
				break
			}
			valStart := start + colon + 1
			// find the quoted value, if any
			rest := strings.TrimLeft(body[valStart:], " ")
			offset := valStart + (len(body[valStart:]) - len(rest))
			if strings.HasPrefix(rest, `"`) {
				end := strings.Index(rest[1:], `"`)
				if end != -1 {
					body = body[:offset] + `"***"` + body[offset+end+2:]
				}
			}
			idx = offset
		}
	}
	return body
}

package middleware

import (
	"context"
	"net/http"
	"time"

	"saha-erp/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuditRecorder 保存审计日志
type AuditRecorder interface {
	RecordAudit(ctx context.Context, entry *models.AuditLog) error
}

// AuditMiddleware 记录已登录用户的每个写操作。
// 请求体包含个人信息，不落库。
func AuditMiddleware(rec AuditRecorder, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		user, ok := CurrentUser(c)
		if !ok {
			return
		}

		userID := user.ID
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      truncate(c.Request.URL.Path, 255),
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}
		// 脱离请求上下文，客户端断开也要写入
		ctx := context.WithoutCancel(c.Request.Context())
		if err := rec.RecordAudit(ctx, &entry); err != nil {
			log.Error().Err(err).Str("route", path).Msg("audit log write failed")
		}
	}
}

// RequestLogger 每个请求打一行日志
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Int("size", c.Writer.Size()).
			Msg("request")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package handler

import (
	"time"

	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LogHandler 审计日志查询
type LogHandler struct {
	Users    *service.UserService
	PageSize int
	Log      zerolog.Logger
}

func NewLogHandler(users *service.UserService, pageSize int, log zerolog.Logger) *LogHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &LogHandler{Users: users, PageSize: pageSize, Log: log}
}

type logResp struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs 分页查询审计日志，按时间倒序
func (h *LogHandler) ListLogs(c *gin.Context) {
	p, size := page(c, h.PageSize)
	logs, total, err := h.Users.AuditLogs(c.Request.Context(), p, size)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			UserID:    l.UserID,
			Method:    l.Method,
			Path:      l.Path,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Paged(c, items, total, p, size)
}

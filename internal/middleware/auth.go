package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"saha-erp/internal/models"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey gin 上下文中保存当前用户（*models.User）的 key
const CurrentUserKey = "currentUser"

// UserGetter 根据 token 里的用户 ID 加载账号
type UserGetter interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware 校验 JWT，并把当前用户放进上下文
func AuthMiddleware(secret, issuer string, users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}

		// 新标签页打开的下载链接用 ?token=xxx
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		claims, err := util.ParseToken(secret, issuer, tokenStr)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please sign in again")
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user no longer exists")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
			}
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// CurrentUser 获取 AuthMiddleware 设置的当前用户
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// RequireRole 角色不在 roles 中的用户直接拒绝
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "permission denied")
	}
}

package handler

import (
	"net/http"

	"saha-erp/internal/middleware"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func userView(id uint, username, displayName, role string) gin.H {
	return gin.H{
		"id":           id,
		"username":     username,
		"display_name": displayName,
		"role":         role,
	}
}

// GetMe 获取当前登录用户
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	view := userView(user.ID, user.Username, user.DisplayName, user.Role)
	view["created_at"] = user.CreatedAt
	view["last_login_at"] = user.LastLoginAt
	util.Success(c, util.Response{"user": view})
}

// UserHandler 管理员创建员工账号
type UserHandler struct {
	Users *service.UserService
	Log   zerolog.Logger
}

func NewUserHandler(users *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{Users: users, Log: log}
}

type createUserReq struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"max=64"`
	Role        string `json:"role" binding:"omitempty,oneof=admin staff"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.Create(c.Request.Context(), service.NewUser{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"user": userView(u.ID, u.Username, u.DisplayName, u.Role)})
}

type profileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
}

// UpdateProfile 修改当前用户的显示名称
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	var req profileReq
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), user.ID, req.DisplayName)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"user": userView(u.ID, u.Username, u.DisplayName, u.Role)})
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改当前用户密码，已签发的 token 在过期前仍然有效
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}
	var req changePasswordReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"message": "password changed"})
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"saha-erp/internal/config"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler 员工登录
type AuthHandler struct {
	Users    *service.UserService
	JWT      config.JWTConfig
	TokenTTL time.Duration
	Log      zerolog.Logger
}

func NewAuthHandler(users *service.UserService, jwtCfg config.JWTConfig, log zerolog.Logger) *AuthHandler {
	ttlHours := jwtCfg.ExpireHours
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		Users:    users,
		JWT:      jwtCfg,
		TokenTTL: time.Duration(ttlHours) * time.Hour,
		Log:      log,
	}
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	switch {
	case errors.Is(err, service.ErrBadCredentials):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid username or password")
		return
	case errors.Is(err, service.ErrAccountLocked):
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, try again later")
		return
	case err != nil:
		respondErr(c, h.Log, err)
		return
	}

	token, err := util.GenerateToken(h.JWT.Secret, h.JWT.Issuer, user.ID, user.Role, h.TokenTTL)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}

	util.Success(c, util.Response{
		"token":      token,
		"expires_in": int(h.TokenTTL.Seconds()),
		"user":       userView(user.ID, user.Username, user.DisplayName, user.Role),
	})
}

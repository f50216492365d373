package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码，和 HTTP 状态码一起返回
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

type envelope struct {
	Code    int      `json:"code"`
	Message string   `json:"message,omitempty"`
	Data    Response `json:"data,omitempty"`
}

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, envelope{Code: CodeOK, Data: data})
}

// Created 同 Success，状态码 201
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, envelope{Code: CodeOK, Data: data})
}

// Paged 分页返回，附带当前页码和总数
func Paged(c *gin.Context, items interface{}, total int64, page, size int) {
	Success(c, Response{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// Error 统一错误返回，并中止后续处理
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, envelope{Code: code, Message: msg})
}

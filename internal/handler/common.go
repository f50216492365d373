package handler

import (
	"errors"
	"net/http"
	"strconv"

	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondErr maps a service error to the HTTP status and envelope code.
func respondErr(c *gin.Context, log zerolog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case errors.Is(err, service.ErrIllegalState):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal server error")
	}
}

// pathID reads a positive numeric path parameter. It writes the 400 response
// itself and returns false when the value is invalid.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return false
	}
	return true
}

// page reads page/page_size query parameters.
func page(c *gin.Context, defaultSize int) (int, int) {
	p, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if p <= 0 {
		p = 1
	}
	size, _ := strconv.Atoi(c.Query("page_size"))
	if size <= 0 || size > 200 {
		size = defaultSize
	}
	return p, size
}

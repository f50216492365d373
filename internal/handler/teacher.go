package handler

import (
	"saha-erp/internal/models"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type TeacherHandler struct {
	Teachers *service.TeacherService
	Log      zerolog.Logger
}

func NewTeacherHandler(teachers *service.TeacherService, log zerolog.Logger) *TeacherHandler {
	return &TeacherHandler{Teachers: teachers, Log: log}
}

type teacherReq struct {
	Name    string `json:"name" binding:"max=128"`
	Email   string `json:"email" binding:"omitempty,email,max=128"`
	Phone   string `json:"phone" binding:"max=32"`
	Subject string `json:"subject" binding:"max=128"`
	Status  string `json:"status"`
}

func (r *teacherReq) toModel() *models.Teacher {
	return &models.Teacher{Name: r.Name, Email: r.Email, Phone: r.Phone, Subject: r.Subject, Status: r.Status}
}

func (h *TeacherHandler) List(c *gin.Context) {
	list, err := h.Teachers.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"teachers": list})
}

func (h *TeacherHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Teachers.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"teacher": t})
}

func (h *TeacherHandler) Create(c *gin.Context) {
	var req teacherReq
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Teachers.Create(c.Request.Context(), req.toModel())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"teacher": t})
}

func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req teacherReq
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Teachers.Update(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"teacher": t})
}

func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Teachers.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}

func (h *TeacherHandler) ByStatus(c *gin.Context) {
	list, err := h.Teachers.ByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"teachers": list})
}

package handler

import (
	"saha-erp/internal/models"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type BatchHandler struct {
	Batches *service.BatchService
	Log     zerolog.Logger
}

func NewBatchHandler(batches *service.BatchService, log zerolog.Logger) *BatchHandler {
	return &BatchHandler{Batches: batches, Log: log}
}

type batchReq struct {
	Name      string `json:"name" binding:"required,max=64"`
	StartTime string `json:"startTime" binding:"required"` // HH:MM
	EndTime   string `json:"endTime" binding:"required"`
}

func (r *batchReq) toModel() (*models.Batch, error) {
	start, err := service.ParseClock(r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := service.ParseClock(r.EndTime)
	if err != nil {
		return nil, err
	}
	return &models.Batch{Name: r.Name, StartTime: start, EndTime: end}, nil
}

func (h *BatchHandler) List(c *gin.Context) {
	list, err := h.Batches.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"batches": list})
}

func (h *BatchHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.Batches.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"batch": b})
}

func (h *BatchHandler) Create(c *gin.Context) {
	var req batchReq
	if !bindJSON(c, &req) {
		return
	}
	b, err := req.toModel()
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	b, err = h.Batches.Create(c.Request.Context(), b)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"batch": b})
}

func (h *BatchHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req batchReq
	if !bindJSON(c, &req) {
		return
	}
	details, err := req.toModel()
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	b, err := h.Batches.Update(c.Request.Context(), id, details)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"batch": b})
}

func (h *BatchHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Batches.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}

// AssignStudents replaces the members with the ids in the body: [1, 2, 3].
func (h *BatchHandler) AssignStudents(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var ids []uint
	if !bindJSON(c, &ids) {
		return
	}
	students, err := h.Batches.AssignStudents(c.Request.Context(), id, ids)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"students": students})
}

func (h *BatchHandler) Students(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	students, err := h.Batches.Students(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"students": students})
}

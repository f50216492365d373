package handler

import (
	"strconv"

	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AttendanceHandler struct {
	Attendance *service.AttendanceService
	Log        zerolog.Logger
}

func NewAttendanceHandler(attendance *service.AttendanceService, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{Attendance: attendance, Log: log}
}

type markReq struct {
	BatchID uint                      `json:"batchId" binding:"required"`
	Date    string                    `json:"date" binding:"required"`
	Records []service.AttendanceEntry `json:"attendance" binding:"required,dive"`
}

// Mark records a roll call for one batch and date.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req markReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Attendance.Mark(c.Request.Context(), req.BatchID, req.Date, req.Records)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

// Get lists attendance for ?batchId=&date=.
func (h *AttendanceHandler) Get(c *gin.Context) {
	batchID, err := strconv.ParseUint(c.Query("batchId"), 10, 64)
	if err != nil || batchID == 0 {
		badRequest(c, "invalid batchId")
		return
	}
	date := c.Query("date")
	if err := util.ValidateDate(date); err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	list, err := h.Attendance.Get(c.Request.Context(), uint(batchID), date)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"attendance": list})
}

func (h *AttendanceHandler) ForStudent(c *gin.Context) {
	id, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	list, err := h.Attendance.ForStudent(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"attendance": list})
}

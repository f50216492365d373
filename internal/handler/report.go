package handler

import (
	"strconv"

	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReportHandler serves the reports and dashboard pages.
type ReportHandler struct {
	Reports *service.ReportService
	Log     zerolog.Logger
}

func NewReportHandler(reports *service.ReportService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{Reports: reports, Log: log}
}

func (h *ReportHandler) MonthlyAdmissions(c *gin.Context) {
	rows, err := h.Reports.MonthlyAdmissions(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"months": rows})
}

func (h *ReportHandler) MonthlyPayments(c *gin.Context) {
	rows, err := h.Reports.MonthlyPayments(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"months": rows})
}

func (h *ReportHandler) MonthlyEnquiries(c *gin.Context) {
	rows, err := h.Reports.MonthlyEnquiries(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"months": rows})
}

// PendingFees accepts an optional ?month=YYYY-MM.
func (h *ReportHandler) PendingFees(c *gin.Context) {
	rows, err := h.Reports.PendingFees(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"students": rows})
}

func (h *ReportHandler) StudentsByMonth(c *gin.Context) {
	rows, err := h.Reports.StudentsByMonth(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"students": rows})
}

func (h *ReportHandler) KPIs(c *gin.Context) {
	kpis, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"kpis": kpis})
}

// EnrollmentTrend accepts ?period=<days>, 30 by default.
func (h *ReportHandler) EnrollmentTrend(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("period", "30"))
	if err != nil {
		badRequest(c, "period must be a number of days")
		return
	}
	series, err := h.Reports.EnrollmentTrend(c.Request.Context(), days)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"labels": series.Labels, "data": series.Data})
}

func (h *ReportHandler) RevenueOverview(c *gin.Context) {
	series, err := h.Reports.RevenueOverview(c.Request.Context(), c.DefaultQuery("period", "monthly"))
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"labels": series.Labels, "data": series.Data})
}

func (h *ReportHandler) RecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	list, err := h.Reports.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"activities": list})
}

func (h *ReportHandler) CourseDistribution(c *gin.Context) {
	series, err := h.Reports.CourseDistribution(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"labels": series.Labels, "data": series.Data})
}

func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	series, err := h.Reports.PaymentMethods(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"labels": series.Labels, "data": series.Data})
}

package handler

import (
	"mime"
	"net/http"

	"saha-erp/internal/models"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StudentHandler serves student records, their fee ledger and documents.
type StudentHandler struct {
	Students *service.StudentService
	Payments *service.PaymentService
	Log      zerolog.Logger
}

func NewStudentHandler(students *service.StudentService, payments *service.PaymentService, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{Students: students, Payments: payments, Log: log}
}

type studentReq struct {
	Name            string           `json:"name" binding:"required,max=128"`
	FatherName      string           `json:"fatherName" binding:"max=128"`
	MotherName      string           `json:"motherName" binding:"max=128"`
	Dob             string           `json:"dob" binding:"max=16"`
	Email           string           `json:"email" binding:"omitempty,email,max=128"`
	PhoneNumber     string           `json:"phoneNumber" binding:"max=32"`
	Address         string           `json:"address" binding:"max=255"`
	Courses         string           `json:"courses" binding:"max=255"`
	CourseDuration  string           `json:"courseDuration" binding:"max=64"`
	TotalCourseFee  *decimal.Decimal `json:"totalCourseFee"`
	PaidAmount      *decimal.Decimal `json:"paidAmount"`
	RemainingAmount *decimal.Decimal `json:"remainingAmount"`
	AdmissionDate   string           `json:"admissionDate"`
}

func (r *studentReq) toModel() (*models.Student, error) {
	admission, err := util.ParseDate(r.AdmissionDate)
	if err != nil {
		return nil, err
	}
	return &models.Student{
		Name:            r.Name,
		FatherName:      r.FatherName,
		MotherName:      r.MotherName,
		Dob:             r.Dob,
		Email:           r.Email,
		PhoneNumber:     r.PhoneNumber,
		Address:         r.Address,
		Courses:         r.Courses,
		CourseDuration:  r.CourseDuration,
		TotalCourseFee:  r.TotalCourseFee,
		PaidAmount:      r.PaidAmount,
		RemainingAmount: r.RemainingAmount,
		AdmissionDate:   admission,
	}, nil
}

func (h *StudentHandler) Create(c *gin.Context) {
	var req studentReq
	if !bindJSON(c, &req) {
		return
	}
	st, err := req.toModel()
	if err != nil {
		badRequest(c, "invalid admissionDate")
		return
	}
	st, err = h.Students.CreateOrUpdate(c.Request.Context(), st)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"student": st})
}

func (h *StudentHandler) List(c *gin.Context) {
	list, err := h.Students.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"students": list})
}

func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.Students.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"student": st})
}

func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req studentReq
	if !bindJSON(c, &req) {
		return
	}
	details, err := req.toModel()
	if err != nil {
		badRequest(c, "invalid admissionDate")
		return
	}
	st, err := h.Students.Update(c.Request.Context(), id, details)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"student": st})
}

func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Students.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}

// Search filters by ?name=&email=&phone=.
func (h *StudentHandler) Search(c *gin.Context) {
	list, err := h.Students.Search(c.Request.Context(), service.StudentFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
		Phone: c.Query("phone"),
	})
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"students": list})
}

type applyPaymentReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// ApplyPayment adds an amount to the student's paid total.
func (h *StudentHandler) ApplyPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req applyPaymentReq
	if !bindJSON(c, &req) {
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return
	}
	st, err := h.Students.ApplyPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"student": st})
}

// Ledger lists the student's payments, latest first.
func (h *StudentHandler) Ledger(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Payments.Ledger(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"payments": list})
}

// UploadDocument accepts a multipart "file" field.
func (h *StudentHandler) UploadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	defer f.Close()

	st, err := h.Students.AttachDocument(c.Request.Context(), id, f, fh.Filename)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"student": st})
}

func (h *StudentHandler) DownloadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.Students.DocumentFile(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	defer doc.Body.Close()
	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}),
	})
}

package handler

import (
	"saha-erp/internal/models"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EnquiryHandler serves enquiries, their conversion and follow-up feedback.
type EnquiryHandler struct {
	Enquiries *service.EnquiryService
	Log       zerolog.Logger
}

func NewEnquiryHandler(enquiries *service.EnquiryService, log zerolog.Logger) *EnquiryHandler {
	return &EnquiryHandler{Enquiries: enquiries, Log: log}
}

// required fields are checked by the service so the message names the field
type enquiryReq struct {
	Name           string `json:"name" binding:"max=128"`
	FatherName     string `json:"fatherName" binding:"max=128"`
	DateOfEnquiry  string `json:"dateOfEnquiry"`
	PhoneNumber    string `json:"phoneNumber" binding:"max=32"`
	Course         string `json:"course" binding:"max=128"`
	CourseDuration string `json:"courseDuration" binding:"max=64"`
	Remarks        string `json:"remarks" binding:"max=1000"`
	TakenBy        string `json:"takenBy" binding:"max=64"`
}

func (r *enquiryReq) toModel() (*models.Enquiry, error) {
	date, err := util.ParseDate(r.DateOfEnquiry)
	if err != nil {
		return nil, err
	}
	return &models.Enquiry{
		Name:           r.Name,
		FatherName:     r.FatherName,
		DateOfEnquiry:  date,
		PhoneNumber:    r.PhoneNumber,
		Course:         r.Course,
		CourseDuration: r.CourseDuration,
		Remarks:        r.Remarks,
		TakenBy:        r.TakenBy,
	}, nil
}

func (h *EnquiryHandler) List(c *gin.Context) {
	list, err := h.Enquiries.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"enquiries": list})
}

func (h *EnquiryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.Enquiries.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"enquiry": e})
}

func (h *EnquiryHandler) Create(c *gin.Context) {
	var req enquiryReq
	if !bindJSON(c, &req) {
		return
	}
	e, err := req.toModel()
	if err != nil {
		badRequest(c, "invalid dateOfEnquiry")
		return
	}
	e, err = h.Enquiries.Create(c.Request.Context(), e)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"enquiry": e})
}

func (h *EnquiryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req enquiryReq
	if !bindJSON(c, &req) {
		return
	}
	details, err := req.toModel()
	if err != nil {
		badRequest(c, "invalid dateOfEnquiry")
		return
	}
	e, err := h.Enquiries.Update(c.Request.Context(), id, details)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"enquiry": e})
}

func (h *EnquiryHandler) Convert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.Enquiries.Convert(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"enquiry": e})
}

func (h *EnquiryHandler) Reverse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.Enquiries.Reverse(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"enquiry": e})
}

func (h *EnquiryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Enquiries.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}

type feedbackReq struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

func (h *EnquiryHandler) AddFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req feedbackReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Date != "" {
		if err := util.ValidateDate(req.Date); err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
	}
	fb, err := h.Enquiries.AddFeedback(c.Request.Context(), id, &models.FeedbackEntry{
		Date:     req.Date,
		Time:     req.Time,
		Feedback: req.Feedback,
	})
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"feedback": fb})
}

func (h *EnquiryHandler) Feedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Enquiries.Feedback(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"feedback": list})
}

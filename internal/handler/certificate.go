package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"saha-erp/internal/models"
	"saha-erp/internal/render"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CertificateHandler struct {
	Certificates *service.CertificateService
	Letterhead   render.Letterhead
	VerifySecret string
	PublicURL    string
	Log          zerolog.Logger
}

func NewCertificateHandler(certs *service.CertificateService, lh render.Letterhead, verifySecret, publicURL string, log zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		Certificates: certs,
		Letterhead:   lh,
		VerifySecret: verifySecret,
		PublicURL:    strings.TrimRight(publicURL, "/"),
		Log:          log,
	}
}

type certificateReq struct {
	StudentID          *uint  `json:"studentId"`
	Type               string `json:"type" binding:"max=64"`
	IssueDate          string `json:"issueDate"`
	ValidUntil         string `json:"validUntil"`
	Remarks            string `json:"remarks" binding:"max=2000"`
	Status             string `json:"status" binding:"max=32"`
	RegistrationNumber string `json:"registrationNumber" binding:"max=64"`
	RollNumber         string `json:"rollNumber" binding:"max=64"`
	ExamRollNumber     string `json:"examRollNumber" binding:"max=64"`
	CourseDuration     string `json:"courseDuration" binding:"max=64"`
	Performance        string `json:"performance" binding:"max=64"`
	Grade              string `json:"grade" binding:"max=16"`
	IssueSession       string `json:"issueSession" binding:"max=32"`
	IssueDay           *int   `json:"issueDay"`
	IssueMonth         string `json:"issueMonth" binding:"max=16"`
	IssueYear          *int   `json:"issueYear"`
	FathersName        string `json:"fathersName" binding:"max=128"`
	MothersName        string `json:"mothersName" binding:"max=128"`
	DateOfBirth        string `json:"dateOfBirth" binding:"max=16"`
}

func (r *certificateReq) toModel() (*models.Certificate, error) {
	issue, err := util.ParseDate(r.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid issueDate")
	}
	c := &models.Certificate{
		StudentID:          r.StudentID,
		Type:               r.Type,
		IssueDate:          issue,
		Remarks:            r.Remarks,
		Status:             r.Status,
		RegistrationNumber: r.RegistrationNumber,
		RollNumber:         r.RollNumber,
		ExamRollNumber:     r.ExamRollNumber,
		CourseDuration:     r.CourseDuration,
		Performance:        r.Performance,
		Grade:              r.Grade,
		IssueSession:       r.IssueSession,
		IssueDay:           r.IssueDay,
		IssueMonth:         r.IssueMonth,
		IssueYear:          r.IssueYear,
		FathersName:        r.FathersName,
		MothersName:        r.MothersName,
		DateOfBirth:        r.DateOfBirth,
	}
	if r.ValidUntil != "" {
		until, err := util.ParseDate(r.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid validUntil")
		}
		c.ValidUntil = &until
	}
	return c, nil
}

func (h *CertificateHandler) List(c *gin.Context) {
	list, err := h.Certificates.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"certificates": list})
}

func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cert, err := h.Certificates.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"certificate": cert})
}

func (h *CertificateHandler) Create(c *gin.Context) {
	var req certificateReq
	if !bindJSON(c, &req) {
		return
	}
	cert, err := req.toModel()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	cert, err = h.Certificates.Create(c.Request.Context(), cert)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"certificate": cert})
}

func (h *CertificateHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req certificateReq
	if !bindJSON(c, &req) {
		return
	}
	details, err := req.toModel()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	cert, err := h.Certificates.Update(c.Request.Context(), id, details)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"certificate": cert})
}

func (h *CertificateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Certificates.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}

func (h *CertificateHandler) ForStudent(c *gin.Context) {
	id, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	list, err := h.Certificates.ForStudent(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"certificates": list})
}

func (h *CertificateHandler) ByRegistration(c *gin.Context) {
	list, err := h.Certificates.ByRegistrationNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"certificates": list})
}

// PDF renders the printable certificate with its verification QR code.
func (h *CertificateHandler) PDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cert, err := h.Certificates.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	holder, err := h.Certificates.Holder(c.Request.Context(), cert)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}

	data := render.CertificateData{Certificate: *cert, Holder: holder}
	if cert.RegistrationNumber != "" {
		data.VerifyCode = util.VerificationCode(h.VerifySecret, cert.RegistrationNumber)
		if h.PublicURL != "" {
			q := url.Values{}
			q.Set("registrationNumber", cert.RegistrationNumber)
			q.Set("code", data.VerifyCode)
			data.VerifyURL = h.PublicURL + "/api/public/certificates/verify?" + q.Encode()
		}
	}

	var buf bytes.Buffer
	if err := render.Certificate(&buf, h.Letterhead, data); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"certificate-%d.pdf\"", cert.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Verify checks a scanned verification code. It is served without sign-in.
func (h *CertificateHandler) Verify(c *gin.Context) {
	number := strings.TrimSpace(c.Query("registrationNumber"))
	code := c.Query("code")
	if number == "" || code == "" {
		badRequest(c, "registrationNumber and code are required")
		return
	}
	if !util.CheckVerificationCode(h.VerifySecret, number, code) {
		util.Success(c, util.Response{"valid": false})
		return
	}
	list, err := h.Certificates.ByRegistrationNumber(c.Request.Context(), number)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	if len(list) == 0 {
		util.Success(c, util.Response{"valid": false})
		return
	}
	cert := list[0]
	util.Success(c, util.Response{
		"valid": true,
		"certificate": gin.H{
			"type":               cert.Type,
			"registrationNumber": cert.RegistrationNumber,
			"grade":              cert.Grade,
			"issueDate":          cert.IssueDate,
			"status":             cert.Status,
		},
	})
}

package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"saha-erp/internal/models"
	"saha-erp/internal/render"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PaymentHandler serves payments, receipt lookups and printable receipts.
type PaymentHandler struct {
	Payments   *service.PaymentService
	Letterhead render.Letterhead
	Log        zerolog.Logger
}

func NewPaymentHandler(payments *service.PaymentService, lh render.Letterhead, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Letterhead: lh, Log: log}
}

type createPaymentReq struct {
	StudentID     uint            `json:"studentId" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" binding:"max=32"`
	TransactionID string          `json:"transactionId" binding:"max=64"`
	Description   string          `json:"description" binding:"max=255"`
	ReceiptNumber string          `json:"receiptNumber" binding:"max=64"`
}

type updatePaymentReq struct {
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"paymentMethod" binding:"omitempty,max=32"`
	TransactionID *string          `json:"transactionId" binding:"omitempty,max=64"`
	Status        *string          `json:"status"`
	Description   *string          `json:"description" binding:"omitempty,max=255"`
	ReceiptNumber *string          `json:"receiptNumber" binding:"omitempty,max=64"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentReq
	if !bindJSON(c, &req) {
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.Payments.Create(c.Request.Context(), &models.Payment{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Description:   req.Description,
		ReceiptNumber: req.ReceiptNumber,
	})
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Created(c, util.Response{"payment": p})
}

func (h *PaymentHandler) List(c *gin.Context) {
	list, err := h.Payments.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"payments": list})
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Payments.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updatePaymentReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount != nil {
		if err := util.ValidateAmount(*req.Amount); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	p, err := h.Payments.Update(c.Request.Context(), id, service.PaymentPatch{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Status:        req.Status,
		Description:   req.Description,
		ReceiptNumber: req.ReceiptNumber,
	})
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"payment": p})
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Payments.Delete(c.Request.Context(), id); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"deleted": id})
}

// LookupReceipt finds a receipt by ?receiptNumber=.
func (h *PaymentHandler) LookupReceipt(c *gin.Context) {
	r, err := h.Payments.LookupReceipt(c.Request.Context(), c.Query("receiptNumber"))
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	util.Success(c, util.Response{"receipt": r.Payment, "student": r.Student})
}

// ReceiptPDF renders the printable receipt of a payment.
func (h *PaymentHandler) ReceiptPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.Payments.Receipt(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Receipt(&buf, h.Letterhead, r.Payment, r.Student); err != nil {
		respondErr(c, h.Log, err)
		return
	}
	name := strings.ReplaceAll(r.Payment.ReceiptNumber, "/", "-")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%s.pdf\"", name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

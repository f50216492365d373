package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"saha-erp/internal/models"
	"saha-erp/internal/service"
	"saha-erp/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHandler downloads the student register and fee ledgers as CSV or XLSX.
type ExportHandler struct {
	Students *service.StudentService
	Payments *service.PaymentService
	Log      zerolog.Logger
}

func NewExportHandler(students *service.StudentService, payments *service.PaymentService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{Students: students, Payments: payments, Log: log}
}

// sheet is a named grid of cells shared by both export formats.
type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]string
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func studentSheet(list []models.Student) sheet {
	s := sheet{
		name:    "Students",
		headers: []string{"ID", "Name", "Phone", "Email", "Courses", "Duration", "Admission date", "Total fee", "Paid", "Remaining"},
		widths:  []float64{8, 24, 16, 26, 24, 12, 14, 12, 12, 12},
	}
	for _, st := range list {
		admitted := ""
		if !st.AdmissionDate.IsZero() {
			admitted = st.AdmissionDate.Format("2006-01-02")
		}
		s.rows = append(s.rows, []string{
			fmt.Sprint(st.ID),
			st.Name,
			st.PhoneNumber,
			st.Email,
			st.Courses,
			st.CourseDuration,
			admitted,
			money(st.TotalCourseFee),
			money(st.PaidAmount),
			money(st.RemainingAmount),
		})
	}
	return s
}

func ledgerSheet(list []models.Payment) sheet {
	s := sheet{
		name:    "Ledger",
		headers: []string{"Receipt", "Date", "Amount", "Method", "Transaction", "Status", "Description"},
		widths:  []float64{22, 18, 12, 12, 20, 10, 30},
	}
	for _, p := range list {
		s.rows = append(s.rows, []string{
			p.ReceiptNumber,
			p.PaymentDate.Format("2006-01-02 15:04"),
			p.Amount.StringFixed(2),
			p.PaymentMethod,
			p.TransactionID,
			p.Status,
			p.Description,
		})
	}
	return s
}

func (s sheet) writeCSV(c *gin.Context, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// UTF-8 BOM so spreadsheet apps pick the right encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(c.Writer)
	_ = w.Write(s.headers)
	_ = w.WriteAll(s.rows)
}

func (s sheet) workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", s.name); err != nil {
		return nil, err
	}
	for i, h := range s.headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s.name, cell, h); err != nil {
			return nil, err
		}
	}
	for r, row := range s.rows {
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(s.name, cell, v); err != nil {
				return nil, err
			}
		}
	}
	for i, w := range s.widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s sheet) writeXLSX(c *gin.Context, log zerolog.Logger, filename string) {
	f, err := s.workbook()
	if err != nil {
		respondErr(c, log, fmt.Errorf("build workbook: %w", err))
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("write workbook")
	}
}

func (h *ExportHandler) send(c *gin.Context, s sheet, filename string) {
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		s.writeCSV(c, filename)
	case "xlsx":
		s.writeXLSX(c, h.Log, filename)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "format must be csv or xlsx")
	}
}

// ExportStudents exports the whole student register; ?format=csv|xlsx.
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	list, err := h.Students.List(c.Request.Context())
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	h.send(c, studentSheet(list), "students_"+time.Now().Format("20060102"))
}

// ExportLedger exports one student's payments.
func (h *ExportHandler) ExportLedger(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Payments.Ledger(c.Request.Context(), id)
	if err != nil {
		respondErr(c, h.Log, err)
		return
	}
	h.send(c, ledgerSheet(list), fmt.Sprintf("ledger_%d_%s", id, time.Now().Format("20060102")))
}

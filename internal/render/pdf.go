// Package render draws printable documents (fee receipts, certificates) as PDF.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"saha-erp/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// Letterhead is printed at the top of every document.
type Letterhead struct {
	Institute string
	Address   string
	Phone     string
}

func newPage(orientation string) *gofpdf.Fpdf {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	return pdf
}

func header(pdf *gofpdf.Fpdf, tr func(string) string, lh Letterhead) {
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 8, tr(lh.Institute), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if lh.Address != "" {
		pdf.CellFormat(0, 5, tr(lh.Address), "", 1, "C", false, 0, "")
	}
	if lh.Phone != "" {
		pdf.CellFormat(0, 5, tr("Tel: "+lh.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetDrawColor(40, 145, 108)
	pdf.SetLineWidth(0.5)
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(8)
}

func field(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(50, 7, tr(label))
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 7, tr(value))
	pdf.Ln(7)
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return "Rs. " + d.StringFixed(2)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Receipt writes the fee receipt of payment p. st may be nil when the student
// record no longer exists.
func Receipt(w io.Writer, lh Letterhead, p models.Payment, st *models.Student) error {
	pdf := newPage("P")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	header(pdf, tr, lh)

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "FEE RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	field(pdf, tr, "Receipt No.:", p.ReceiptNumber)
	field(pdf, tr, "Date:", p.PaymentDate.Format("02 Jan 2006 15:04"))
	if st != nil {
		field(pdf, tr, "Student:", st.Name)
		field(pdf, tr, "Father's Name:", orDash(st.FatherName))
		field(pdf, tr, "Course:", orDash(st.Courses))
		field(pdf, tr, "Phone:", orDash(st.PhoneNumber))
	} else {
		field(pdf, tr, "Student ID:", fmt.Sprint(p.StudentID))
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(40, 145, 108)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(110, 8, "DESCRIPTION", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "AMOUNT", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 10)
	desc := p.Description
	if desc == "" {
		desc = "Course fee"
	}
	amount := p.Amount
	pdf.CellFormat(110, 8, tr(desc), "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, money(&amount), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	field(pdf, tr, "Payment Method:", orDash(p.PaymentMethod))
	if p.TransactionID != "" {
		field(pdf, tr, "Transaction ID:", p.TransactionID)
	}
	field(pdf, tr, "Status:", p.Status)
	if st != nil && st.TotalCourseFee != nil {
		field(pdf, tr, "Total Course Fee:", money(st.TotalCourseFee))
		field(pdf, tr, "Paid So Far:", money(st.PaidAmount))
		field(pdf, tr, "Balance:", money(st.RemainingAmount))
	}

	footer(pdf, tr)
	return output(pdf, w)
}

// CertificateData is what a printed certificate needs beyond the stored row.
type CertificateData struct {
	Certificate models.Certificate
	Holder      *models.Student
	// VerifyCode is printed and embedded in the QR code.
	VerifyCode string
	// VerifyURL, when set, is the QR payload with the code appended.
	VerifyURL string
}

// Certificate writes a landscape certificate with a verification QR code.
func Certificate(w io.Writer, lh Letterhead, data CertificateData) error {
	c := data.Certificate
	pdf := newPage("L")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	header(pdf, tr, lh)

	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 12, tr(strings.ToUpper(orDash(c.Type))), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	name := "-"
	if data.Holder != nil {
		name = data.Holder.Name
	}
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(name), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	parents := []string{}
	if c.FathersName != "" {
		parents = append(parents, "son/daughter of "+c.FathersName)
	}
	if c.MothersName != "" {
		parents = append(parents, "and "+c.MothersName)
	}
	if len(parents) > 0 {
		pdf.CellFormat(0, 8, tr(strings.Join(parents, " ")), "", 1, "C", false, 0, "")
	}
	course := ""
	if data.Holder != nil {
		course = data.Holder.Courses
	}
	line := "has successfully completed the course"
	if course != "" {
		line += " " + course
	}
	if c.CourseDuration != "" {
		line += " of " + c.CourseDuration
	}
	pdf.CellFormat(0, 8, tr(line), "", 1, "C", false, 0, "")
	if c.Grade != "" || c.Performance != "" {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("with grade %s (%s)", orDash(c.Grade), orDash(c.Performance))), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	field(pdf, tr, "Registration No.:", orDash(c.RegistrationNumber))
	field(pdf, tr, "Roll No.:", orDash(c.RollNumber))
	field(pdf, tr, "Exam Roll No.:", orDash(c.ExamRollNumber))
	field(pdf, tr, "Session:", orDash(c.IssueSession))
	field(pdf, tr, "Date of Birth:", orDash(c.DateOfBirth))
	field(pdf, tr, "Issued On:", issuedOn(c))
	if c.ValidUntil != nil {
		field(pdf, tr, "Valid Until:", c.ValidUntil.Format("02 Jan 2006"))
	}
	if data.VerifyCode != "" {
		field(pdf, tr, "Verification Code:", data.VerifyCode)
	}

	payload := data.VerifyCode
	if data.VerifyURL != "" {
		payload = data.VerifyURL
	}
	if payload != "" {
		if err := drawQR(pdf, payload); err != nil {
			return err
		}
	}

	footer(pdf, tr)
	return output(pdf, w)
}

func issuedOn(c models.Certificate) string {
	if c.IssueDay != nil && c.IssueMonth != "" && c.IssueYear != nil {
		return fmt.Sprintf("%d %s %d", *c.IssueDay, c.IssueMonth, *c.IssueYear)
	}
	if c.IssueDate.IsZero() {
		return "-"
	}
	return c.IssueDate.Format("02 Jan 2006")
}

func drawQR(pdf *gofpdf.Fpdf, content string) error {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("verify-qr", opts, bytes.NewReader(png))
	pageW, pageH := pdf.GetPageSize()
	const size = 35.0
	pdf.ImageOptions("verify-qr", pageW-20-size, pageH-20-size-15, size, size, false, opts, 0, "")
	return pdf.Error()
}

func footer(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 5, tr("Generated on "+time.Now().Format("January 02, 2006 at 3:04 PM")))
	pdf.Ln(4)
	pdf.Cell(0, 5, "This is a computer-generated document.")
	pdf.SetTextColor(0, 0, 0)
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

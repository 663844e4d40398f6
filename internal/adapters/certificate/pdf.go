package certificate

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"campusevents/internal/domain"
)

const (
	contentTypePDF = "application/pdf"
	dateLayout     = "January 2, 2006"
)

type pdfRenderer struct{}

// NewPDFRenderer returns a CertificateRenderer that draws a landscape A4 certificate.
func NewPDFRenderer() domain.CertificateRenderer {
	return &pdfRenderer{}
}

func (r *pdfRenderer) ContentType() string {
	return contentTypePDF
}

func (r *pdfRenderer) Render(data *domain.CertificateData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("certificate data is nil")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Participation", true)
	pdf.SetCreator(data.IssuerName, true)
	if !data.IssuedAt.IsZero() {
		pdf.SetCreationDate(data.IssuedAt)
	}
	// core fonts are cp1252; accented names need the translator
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	width, height := pdf.GetPageSize()
	pdf.SetDrawColor(30, 64, 120)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, width-20, height-20, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(15, 15, width-30, height-30, "D")

	contentWidth := width - 40
	pdf.SetXY(20, 40)
	pdf.SetTextColor(30, 64, 120)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(contentWidth, 16, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetX(20)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(contentWidth, 10, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetX(20)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(contentWidth, 14, tr(data.RecipientName), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetX(20)
	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(contentWidth, 10, "has participated in", "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetX(20)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.MultiCell(contentWidth, 11, tr(data.EventTitle), "", "C", false)

	pdf.SetX(20)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(contentWidth, 10, "held on "+data.EventDate.Format(dateLayout), "", 1, "C", false, 0, "")

	pdf.SetXY(20, height-45)
	pdf.SetTextColor(90, 90, 90)
	pdf.SetFont("Helvetica", "I", 12)
	if data.IssuerName != "" {
		pdf.CellFormat(contentWidth, 8, tr("Issued by "+data.IssuerName), "", 1, "C", false, 0, "")
		pdf.SetX(20)
	}
	if !data.IssuedAt.IsZero() {
		pdf.CellFormat(contentWidth, 8, "Issued on "+data.IssuedAt.Format(dateLayout), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

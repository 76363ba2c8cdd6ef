package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth = 277.0 // A4 landscape minus margins
	pdfRowHeight = 7.0
)

// PDFExporter renders datasets as a landscape A4 table.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render lays the table out with column widths proportional to their
// weights. The header row repeats on every page.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	widths := columnWidths(data.Columns)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	generated := e.now().UTC().Format("2006-01-02 15:04 MST")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s  |  page %d", generated, pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range data.Columns {
			pdf.CellFormat(widths[i], 8, tr(col.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d records", len(data.Rows)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], pdfRowHeight, truncate(pdf, tr(cell), widths[i]-2), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, col := range cols {
		total += weight(col)
	}
	widths := make([]float64, len(cols))
	for i, col := range cols {
		widths[i] = pdfPageWidth * weight(col) / total
	}
	return widths
}

func weight(col Column) float64 {
	if col.Weight <= 0 {
		return 1
	}
	return col.Weight
}

func truncate(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

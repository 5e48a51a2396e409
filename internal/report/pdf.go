package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMarginMM = 15.0
	pdfRowMM    = 7.0
)

// WritePDF lays s out on A4 pages: title, summary, then the breakdown table.
func WritePDF(w io.Writer, s Sheet) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(true, pdfMarginMM)
	pdf.SetTitle(s.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(s.Title))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	for _, f := range s.Summary {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(40, pdfRowMM, tr(f.Label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, pdfRowMM, tr(f.Value), "", 1, "L", false, 0, "")
	}

	if len(s.Rows) > 0 {
		pdf.Ln(6)
		pageWidth, _ := pdf.GetPageSize()
		colWidth := (pageWidth - 2*pdfMarginMM) / float64(len(s.Headers))

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(230, 230, 240)
		for _, h := range s.Headers {
			pdf.CellFormat(colWidth, pdfRowMM, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 11)
		for _, row := range s.Rows {
			for i := range s.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(colWidth, pdfRowMM, tr(cell), "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMarginLeft = 14.0
	pdfRowHeight  = 7.0
)

// WritePDF renders the document as a paginated A4 table: title, generation
// date, header row repeated per page, page number footer.
func WritePDF(doc Document, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, 20, pdfMarginLeft)
	pdf.AliasNbPages("")

	pageW, _ := pdf.GetPageSize()
	usable := pageW - 2*pdfMarginLeft
	colW := usable
	if len(doc.Headers) > 0 {
		colW = usable / float64(len(doc.Headers))
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(59, 130, 246)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range doc.Headers {
			pdf.CellFormat(colW, pdfRowHeight, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated on "+now.Format("2006-01-02"))
	pdf.Ln(10)

	header()
	for _, row := range doc.Rows {
		for i := 0; i < len(doc.Headers); i++ {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(colW, pdfRowHeight, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

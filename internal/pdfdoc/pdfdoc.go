// Package pdfdoc inspects uploaded PDFs and renders summary documents.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"paperapi/internal/model"
)

// ErrInvalidPDF is returned for bytes that do not parse as a PDF document.
var ErrInvalidPDF = errors.New("invalid pdf document")

var pdfMagic = []byte("%PDF-")

func init() {
	api.DisableConfigDir()
}

// Info describes a validated document.
type Info struct {
	Pages int
}

// Inspect validates data as a PDF and counts its pages.
func Inspect(data []byte) (Info, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n\x00"), pdfMagic) {
		return Info{}, ErrInvalidPDF
	}
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if n < 1 {
		return Info{}, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}
	return Info{Pages: n}, nil
}

// ExtractText returns the plain text of every page, pages separated by a blank line.
func ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	var content strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(pageText)
		content.WriteString("\n\n")
	}
	return strings.TrimSpace(content.String()), nil
}

// SummaryDocument is the content of a rendered summary.
type SummaryDocument struct {
	Title    string
	Author   string
	Category string
	Summary  string
	Sections []model.Section
}

// RenderSummary lays out a summary document as an A4 PDF.
func RenderSummary(s SummaryDocument) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetTitle(s.Title, true)
	doc.SetAuthor(s.Author, true)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Arial", "B", 16)
	doc.MultiCell(0, 8, tr(s.Title), "", "L", false)

	byline := s.Author
	if s.Category != "" {
		byline += " | " + s.Category
	}
	if byline != "" {
		doc.SetFont("Arial", "I", 10)
		doc.MultiCell(0, 6, tr(byline), "", "L", false)
	}
	doc.Ln(4)

	doc.SetFont("Arial", "B", 13)
	doc.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	doc.SetFont("Arial", "", 11)
	doc.MultiCell(0, 5.5, tr(s.Summary), "", "L", false)

	for _, sec := range s.Sections {
		doc.Ln(3)
		doc.SetFont("Arial", "B", 12)
		doc.MultiCell(0, 7, tr(sec.Title), "", "L", false)
		doc.SetFont("Arial", "", 11)
		doc.MultiCell(0, 5.5, tr(sec.Content), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"bytes"
	"fmt"

	"resume-builder/internal/pagination"

	"codeberg.org/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
)

const mmPerPx = 25.4 / 96

// pageMM returns the paper size in millimetres. A4 maps to exactly 210x297.
func pageMM(size pagination.PageSize) (w, h float64) {
	if size == pagination.PageSizeA4 {
		return 210, 297
	}
	return size.Width * mmPerPx, size.Height * mmPerPx
}

// Assemble builds a PDF with one page per PNG image, each image stretched to
// cover the full page.
func Assemble(images [][]byte, size pagination.PageSize) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNothingToExport
	}
	w, h := pageMM(size)
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range images {
		name := fmt.Sprintf("page-%d", i+1)
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("page %d image: %w", i+1, err)
		}
		doc.AddPage()
		doc.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount parses a PDF and returns its number of pages.
func PageCount(b []byte) (n int, err error) {
	// the reader panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return r.NumPage(), nil
}

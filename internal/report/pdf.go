package report

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/nickjwhite/gofpdf"

	"slasher/internal/imageio"
)

// pxPerInch maps segment pixels to PDF points at screen resolution.
const pxPerInch = 96

// maxPagePt is the largest page dimension PDF readers accept.
const maxPagePt = 14400.0

func pxToPt(px int) float64 {
	return float64(px) * 72 / pxPerInch
}

// PDF bundles segments into a document with one page per segment, each page
// sized to its image.
type PDF struct {
	fpdf  *gofpdf.Fpdf
	pages int
}

// NewPDF starts an empty document.
func NewPDF(title string) *PDF {
	f := gofpdf.New("P", "pt", "A4", "")
	f.SetTitle(title, true)
	f.SetCreator("slasher", true)
	f.SetAutoPageBreak(false, 0)
	f.SetCompression(true)
	return &PDF{fpdf: f}
}

// AddImage appends img as a new page. The image is embedded as PNG so the
// page is lossless regardless of the segment output format.
func (p *PDF) AddImage(img image.Image) error {
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, imageio.FormatPNG, imageio.EncodeOptions{}); err != nil {
		return fmt.Errorf("encode pdf page: %w", err)
	}
	b := img.Bounds()
	w, h := pxToPt(b.Dx()), pxToPt(b.Dy())
	if h > maxPagePt {
		w, h = w*maxPagePt/h, maxPagePt
	}

	name := "page" + strconv.Itoa(p.pages)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.fpdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
	p.fpdf.RegisterImageOptionsReader(name, opts, &buf)
	p.fpdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	if err := p.fpdf.Error(); err != nil {
		return fmt.Errorf("add pdf page %d: %w", p.pages, err)
	}
	p.pages++
	return nil
}

// Pages returns the number of pages added so far.
func (p *PDF) Pages() int {
	return p.pages
}

// Write emits the document and closes it.
func (p *PDF) Write(w io.Writer) error {
	if p.pages == 0 {
		return fmt.Errorf("write pdf: no pages")
	}
	return p.fpdf.Output(w)
}

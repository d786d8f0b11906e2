package mdexport

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Footer geometry.
const (
	footerFontFamily = "Helvetica"
	footerFontSize   = 9   // pt
	footerLineHeight = 4.0 // mm
	pdfCreator       = "go-mdexport"
)

// pdfRequest holds what the assembler needs besides the bitmap.
type pdfRequest struct {
	PageSize    PageSize
	Margins     Margins
	Supersample int
	PageNumbers bool
	Title       string
	Created     time.Time
}

// assemblePDF pages the bitmap into a PDF document.
// Returns the document bytes and the page count.
func assemblePDF(img image.Image, req pdfRequest) ([]byte, int, error) {
	pageW, pageH := req.PageSize.Dimensions()
	margin := req.Margins.Millimetres()
	contentW := pageW - 2*margin
	contentH := pageH - 2*margin

	bounds := img.Bounds()
	strips, err := SplitPages(Layout{
		BitmapWidth:  bounds.Dx(),
		BitmapHeight: bounds.Dy(),
		Supersample:  req.Supersample,
		PageWidth:    contentW,
		PageHeight:   contentH,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPDFAssembly, err)
	}

	bg := sampleBackground(img)
	fg := footerColor(bg)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(req.Title, true)
	pdf.SetCreator(pdfCreator, true)
	if !req.Created.IsZero() {
		pdf.SetCreationDate(req.Created)
	}

	if req.PageNumbers {
		pdf.AliasNbPages("")
		pdf.SetFooterFunc(func() {
			pdf.SetFont(footerFontFamily, "", footerFontSize)
			pdf.SetTextColor(int(fg.R), int(fg.G), int(fg.B))
			pdf.SetXY(margin, pageH-margin/2-footerLineHeight/2)
			pdf.CellFormat(contentW, footerLineHeight,
				fmt.Sprintf("Page %d of {nb}", pdf.PageNo()),
				"", 0, "C", false, 0, "")
		})
	}

	for _, s := range strips {
		pdf.AddPage()
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, pageW, pageH, "F")

		data, err := encodeStrip(img, s)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: page %d: %v", ErrPDFAssembly, s.Index+1, err)
		}

		name := fmt.Sprintf("page-%d", s.Index)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, margin, margin, contentW, s.DrawHeight, false, opts, 0, "")

		if err := pdf.Error(); err != nil {
			return nil, 0, fmt.Errorf("%w: page %d: %v", ErrPDFAssembly, s.Index+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return buf.Bytes(), len(strips), nil
}

// encodeStrip crops one strip out of the bitmap as PNG.
func encodeStrip(img image.Image, s Strip) ([]byte, error) {
	b := img.Bounds()
	rect := image.Rect(b.Min.X, b.Min.Y+s.SrcY, b.Max.X, b.Min.Y+s.SrcY+s.SrcHeight)

	var strip image.Image
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		strip = sub.SubImage(rect)
	} else {
		dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
		strip = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, strip); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sampleBackground reads the document background from the top-left pixel,
// which is page padding in every theme.
func sampleBackground(img image.Image) color.RGBA {
	b := img.Bounds()
	if b.Empty() {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	c := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.RGBA)
	c.A = 255
	return c
}

// footerColor picks a muted text colour readable on bg.
func footerColor(bg color.RGBA) color.RGBA {
	luma := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if luma < 128 {
		return color.RGBA{R: 160, G: 166, B: 173, A: 255}
	}
	return color.RGBA{R: 110, G: 118, B: 129, A: 255}
}

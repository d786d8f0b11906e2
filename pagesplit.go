package mdexport

import (
	"fmt"
	"math"
)

// pageEpsilon keeps exact multiples of the page height from adding a blank
// trailing page through floating-point noise.
const pageEpsilon = 1e-6

// Layout describes a rasterized document and the content box it is paged into.
type Layout struct {
	BitmapWidth  int     // device pixels
	BitmapHeight int     // device pixels
	Supersample  int     // device pixels per CSS pixel
	PageWidth    float64 // content box width, mm
	PageHeight   float64 // content box height, mm
}

// Strip is the part of the bitmap drawn on one page.
type Strip struct {
	Index      int     // zero-based page index
	SrcY       int     // first source row, device pixels
	SrcHeight  int     // source rows, device pixels
	DrawHeight float64 // drawn height, mm
}

// SplitPages cuts the bitmap into page-sized horizontal strips.
// The bitmap is scaled so its width fills the content box. Strip boundaries
// are derived from the page index so rounding never accumulates, and the last
// strip ends exactly at the bottom of the bitmap.
func SplitPages(l Layout) ([]Strip, error) {
	if l.BitmapWidth <= 0 || l.BitmapHeight <= 0 || l.Supersample <= 0 {
		return nil, fmt.Errorf("%w: bitmap %dx%d at scale %d", ErrInvalidLayout, l.BitmapWidth, l.BitmapHeight, l.Supersample)
	}
	if l.PageWidth <= 0 || l.PageHeight <= 0 {
		return nil, fmt.Errorf("%w: content box %.2fx%.2fmm", ErrInvalidLayout, l.PageWidth, l.PageHeight)
	}

	ss := float64(l.Supersample)
	scale := l.PageWidth / (float64(l.BitmapWidth) / ss) // mm per CSS px
	scaledHeight := float64(l.BitmapHeight) / ss * scale
	rowsPerPage := l.PageHeight / scale * ss // device rows per page

	pages := 1
	if scaledHeight > l.PageHeight {
		pages = int(math.Ceil(scaledHeight/l.PageHeight - pageEpsilon))
	}

	strips := make([]Strip, 0, pages)
	for i := range pages {
		top := int(math.Round(float64(i) * rowsPerPage))
		bottom := int(math.Round(float64(i+1) * rowsPerPage))
		if i == pages-1 || bottom > l.BitmapHeight {
			bottom = l.BitmapHeight
		}
		if bottom <= top {
			break
		}
		strips = append(strips, Strip{
			Index:      i,
			SrcY:       top,
			SrcHeight:  bottom - top,
			DrawHeight: float64(bottom-top) / ss * scale,
		})
	}
	return strips, nil
}

package pagination

import (
	"fmt"
	"math"
)

// Block is one top-level rendered unit of the document, the atomic unit of
// pagination. Markup is the block's serialized HTML as captured by the
// measurement host, so pages can be replayed without rendering again.
type Block struct {
	Markup string  `json:"markup"`
	Height float64 `json:"height"`
}

// Page is an ordered run of blocks rendered within one physical page.
type Page struct {
	Blocks []Block `json:"blocks"`
}

// Height is the cumulative height of the page's blocks.
func (p Page) Height() float64 {
	var h float64
	for _, b := range p.Blocks {
		h += b.Height
	}
	return h
}

// Partition greedily fills pages of pageHeight with blocks in document order.
//
// A block that does not fit on the current page starts a new one, unless the
// current page is still empty: a block taller than pageHeight is placed alone
// and the page overflows. No block is split, dropped or reordered. Zero blocks
// yield zero pages.
//
// Partition panics if pageHeight is negative or NaN.
func Partition(blocks []Block, pageHeight float64) []Page {
	if pageHeight < 0 || math.IsNaN(pageHeight) {
		panic(fmt.Sprintf("pagination: invalid page height %v", pageHeight))
	}
	if len(blocks) == 0 {
		return nil
	}

	pages := []Page{{}}
	var acc float64
	for _, b := range blocks {
		cur := &pages[len(pages)-1]
		if acc+b.Height > pageHeight && len(cur.Blocks) > 0 {
			pages = append(pages, Page{})
			cur = &pages[len(pages)-1]
			acc = 0
		}
		cur.Blocks = append(cur.Blocks, b)
		acc += b.Height
	}
	return pages
}

package pagination

// PageSize is a page geometry in CSS pixels (1/96 inch).
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Name   string  `json:"name"`
}

// Standard page sizes at 96 dpi.
var (
	PageSizeA4     = PageSize{Width: 794, Height: 1123, Name: "A4"}
	PageSizeLetter = PageSize{Width: 816, Height: 1056, Name: "Letter"}
)

// Options configures a Paginator.
type Options struct {
	// PageSize is the print geometry. Width is the reference width the
	// measurement host lays content out at, Height the per-page budget.
	PageSize PageSize
}

// DefaultOptions returns A4 pagination.
func DefaultOptions() Options {
	return Options{PageSize: PageSizeA4}
}

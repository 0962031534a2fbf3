package measure

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"resume-builder/internal/pagination"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/net/html"
)

// EstimateHost approximates browser layout without one: text is wrapped with
// core PDF font metrics at the root width and block elements get fixed
// vertical margins. Heights are good enough for page breaking in tests and
// the CLI, not pixel exact.
type EstimateHost struct {
	Width      float64
	FontSize   float64
	LineHeight float64
	// Padding is subtracted from Width on both sides before wrapping.
	Padding float64

	mu  sync.Mutex
	pdf *fpdf.Fpdf
}

// NewEstimateHost returns an estimator for the given content width in px.
func NewEstimateHost(width float64) *EstimateHost {
	return &EstimateHost{Width: width, FontSize: 15, LineHeight: 1.3, Padding: 44}
}

var (
	fontSizeRe   = regexp.MustCompile(`font-size:\s*(\d+(?:\.\d+)?)px`)
	lineHeightRe = regexp.MustCompile(`line-height:\s*(\d+(?:\.\d+)?)(;|$)`)
)

type textStyle struct {
	size   float64
	line   float64
	family string
	style  string
}

// Measure implements pagination.Host.
func (h *EstimateHost) Measure(ctx context.Context, markup string) ([]pagination.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := findRoot(markup)
	if err != nil {
		return nil, err
	}
	base := textStyle{size: h.FontSize, line: h.LineHeight, family: "Helvetica"}
	base = inherit(base, attr(root, "style"))
	width := h.Width - 2*h.Padding
	if width <= 0 {
		width = h.Width
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pdf == nil {
		h.pdf = fpdf.New("P", "pt", "A4", "")
	}

	var blocks []pagination.Block
	for c := range elementChildren(root) {
		s, err := outerHTML(c)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, pagination.Block{
			Markup: s,
			Height: math.Ceil(h.block(c, width, base)),
		})
	}
	return blocks, nil
}

func inherit(st textStyle, inline string) textStyle {
	if m := fontSizeRe.FindStringSubmatch(inline); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			st.size = v
		}
	}
	if m := lineHeightRe.FindStringSubmatch(inline); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			st.line = v
		}
	}
	if strings.Contains(inline, "font-weight: bold") {
		st.style = addStyle(st.style, "B")
	}
	if strings.Contains(inline, "font-style: italic") {
		st.style = addStyle(st.style, "I")
	}
	if i := strings.Index(inline, "font-family:"); i >= 0 {
		first := strings.Split(inline[i+len("font-family:"):], ",")[0]
		first = strings.ToLower(strings.TrimSpace(strings.Trim(strings.Split(first, ";")[0], `'" `)))
		switch first {
		case "times", "times new roman", "georgia", "serif":
			st.family = "Times"
		case "courier", "courier new", "monospace":
			st.family = "Courier"
		default:
			st.family = "Helvetica"
		}
	}
	return st
}

func addStyle(s, flag string) string {
	if strings.Contains(s, flag) {
		return s
	}
	return s + flag
}

// tag scales and vertical margins in px
var (
	headingScale = map[string]float64{"h1": 2, "h2": 1.25, "h3": 1.1}
	blockMargin  = map[string]float64{
		"header": 24, "section": 16, "footer": 16,
		"h1": 4, "h2": 6, "h3": 4, "p": 2, "ul": 4, "li": 1,
	}
)

func (h *EstimateHost) block(n *html.Node, width float64, st textStyle) float64 {
	st = inherit(st, attr(n, "style"))
	if scale, ok := headingScale[n.Data]; ok {
		st.size *= scale
		st.style = addStyle(st.style, "B")
	}
	switch n.Data {
	case "img":
		if v, err := strconv.ParseFloat(attr(n, "height"), 64); err == nil {
			return v
		}
		return 96
	case "br":
		return st.size * st.line
	}

	margin := blockMargin[n.Data]
	if !hasBlockChild(n) {
		text := strings.TrimSpace(collapse(textOf(n)))
		if text == "" {
			return margin
		}
		return margin + h.lines(text, width, st)*st.size*st.line
	}

	total := margin
	var inline strings.Builder
	flush := func() {
		if t := strings.TrimSpace(collapse(inline.String())); t != "" {
			total += h.lines(t, width, st) * st.size * st.line
		}
		inline.Reset()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && isBlockTag(c.Data):
			flush()
			total += h.block(c, width, st)
		default:
			inline.WriteString(textOf(c))
		}
	}
	flush()
	return total
}

func (h *EstimateHost) lines(text string, width float64, st textStyle) float64 {
	h.pdf.SetFont(st.family, st.style, st.size)
	n := 1.0
	line := 0.0
	space := h.pdf.GetStringWidth(" ")
	for _, word := range strings.Fields(text) {
		w := h.pdf.GetStringWidth(pdfSafe(word))
		switch {
		case line == 0:
			line = w
		case line+space+w <= width:
			line += space + w
		default:
			n++
			line = w
		}
		for line > width {
			n++
			line -= width
		}
	}
	return n
}

// pdfSafe replaces runes the core fonts have no metrics for with a letter of
// similar width.
func pdfSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxLatin1 {
			return 'm'
		}
		return r
	}, s)
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlockTag(c.Data) {
			return true
		}
	}
	return false
}

func isBlockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "tr", "header", "footer",
		"section", "article", "main", "aside", "img", "br":
		return true
	}
	return false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

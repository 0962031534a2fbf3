package pagination

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"strings"

	"resume-builder/internal/model"

	"github.com/rs/zerolog/log"
)

// RootID is the id of the measurement root. Its direct children are the
// document's blocks.
const RootID = "resume-root"

// RootClass is shared by the measurement root and every replayed page body so
// template stylesheets apply identically to both.
const RootClass = "resume-root"

var (
	// ErrTemplateNotFound is returned by a Renderer for an unknown template id.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrHostUnavailable is returned by a Host that cannot measure right now.
	ErrHostUnavailable = errors.New("measurement host unavailable")
)

// Rendered is a template's output. Body holds the top-level blocks, RootStyle
// the inline style of the element that contains them.
type Rendered struct {
	Stylesheet string
	RootStyle  string
	Body       string
}

// Renderer resolves a document's template and renders it.
type Renderer interface {
	Render(doc model.Document) (Rendered, error)
}

// Host lays out a complete HTML document and reports the height and markup of
// each direct child of the element with id RootID, in document order.
type Host interface {
	Measure(ctx context.Context, markup string) ([]Block, error)
}

// ResizeObserver is implemented by hosts that can tell when content they
// measured changed size afterwards, e.g. once a web font or image loaded.
type ResizeObserver interface {
	// ObserveResize registers fn and returns a func that stops observation.
	ObserveResize(fn func()) (stop func())
}

// Result is the outcome of one pagination pass. It is never mutated after it
// has been returned.
type Result struct {
	Pages      []Page   `json:"pages"`
	PageSize   PageSize `json:"pageSize"`
	TemplateID string   `json:"templateId"`
	Generation uint64   `json:"generation"`
	Stylesheet string   `json:"-"`
	RootStyle  string   `json:"-"`
}

// Empty reports whether the result has no pages.
func (r *Result) Empty() bool {
	return r == nil || len(r.Pages) == 0
}

// BlockCount is the number of blocks over all pages.
func (r *Result) BlockCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, p := range r.Pages {
		n += len(p.Blocks)
	}
	return n
}

// Paginator renders a document, measures it on a Host and partitions the
// measured blocks into pages.
type Paginator struct {
	renderer Renderer
	host     Host
	opts     Options
}

func NewPaginator(r Renderer, h Host, opts Options) *Paginator {
	if opts.PageSize.Width <= 0 || opts.PageSize.Height <= 0 {
		opts.PageSize = PageSizeA4
	}
	return &Paginator{renderer: r, host: h, opts: opts}
}

// Options returns the paginator's options.
func (p *Paginator) Options() Options { return p.opts }

// Host returns the measurement host.
func (p *Paginator) Host() Host { return p.host }

// Paginate runs one full pass over doc. An unknown template yields an empty
// result, not an error.
func (p *Paginator) Paginate(ctx context.Context, doc model.Document) (*Result, error) {
	res := &Result{PageSize: p.opts.PageSize, TemplateID: doc.Template()}

	rendered, err := p.renderer.Render(doc)
	if errors.Is(err, ErrTemplateNotFound) {
		log.Warn().Str("template", doc.Template()).Msg("pagination: unknown template, nothing to preview")
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("render template %q: %w", doc.Template(), err)
	}
	if p.host == nil {
		return nil, ErrHostUnavailable
	}

	blocks, err := p.host.Measure(ctx, HostDocument(rendered, p.opts.PageSize.Width))
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}
	for i := range blocks {
		if blocks[i].Height < 0 || math.IsNaN(blocks[i].Height) || math.IsInf(blocks[i].Height, 0) {
			blocks[i].Height = 0
		}
	}

	res.Pages = Partition(blocks, p.opts.PageSize.Height)
	res.Stylesheet = rendered.Stylesheet
	res.RootStyle = rendered.RootStyle
	return res, nil
}

var hostTemplate = template.Must(template.New("host").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; padding: 0; }
{{.Stylesheet}}
</style>
</head>
<body>
<div id="{{.RootID}}" class="{{.RootClass}}" style="width: {{.Width}}px; {{.RootStyle}}">{{.Body}}</div>
</body>
</html>
`))

// HostDocument wraps rendered template output in the standalone page a Host
// lays out at the given width.
func HostDocument(r Rendered, width float64) string {
	var b strings.Builder
	_ = hostTemplate.Execute(&b, map[string]any{
		"Stylesheet": template.CSS(r.Stylesheet),
		"RootStyle":  template.CSS(r.RootStyle),
		"Body":       template.HTML(r.Body),
		"RootID":     RootID,
		"RootClass":  RootClass,
		"Width":      width,
	})
	return b.String()
}

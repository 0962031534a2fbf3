package pagination

import (
	"html/template"
	"io"
)

var pagesTemplate = template.Must(template.New("pages").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
html, body { margin: 0; padding: 0; }
{{.Stylesheet}}
.paginated-preview-container { display: flex; flex-direction: column; align-items: center; gap: 24px; }
.document-page { width: {{.Width}}px; height: {{.Height}}px; overflow: hidden; box-sizing: border-box; background: #ffffff; break-after: page; }
.document-page:last-child { break-after: auto; }
.page-content { width: {{.Width}}px; min-height: {{.Height}}px; }
@media print { .paginated-preview-container { gap: 0; } }
@page { size: {{.Width}}px {{.Height}}px; margin: 0; }
</style>
</head>
<body>
<div class="paginated-preview-container">
{{- range .Pages}}
<div class="document-page"><div class="page-content {{$.RootClass}}" style="{{$.RootStyle}}">{{range .}}{{.}}{{end}}</div></div>
{{- end}}
</div>
</body>
</html>
`))

// RenderPages writes the paginated document: one fixed-size .document-page
// container per page, each replaying the markup captured at measurement time.
func RenderPages(w io.Writer, res *Result) error {
	size := PageSizeA4
	var pages [][]template.HTML
	var stylesheet, rootStyle string
	if res != nil {
		if res.PageSize.Width > 0 && res.PageSize.Height > 0 {
			size = res.PageSize
		}
		stylesheet, rootStyle = res.Stylesheet, res.RootStyle
		pages = make([][]template.HTML, len(res.Pages))
		for i, p := range res.Pages {
			pages[i] = make([]template.HTML, len(p.Blocks))
			for j, b := range p.Blocks {
				pages[i][j] = template.HTML(b.Markup)
			}
		}
	}
	return pagesTemplate.Execute(w, map[string]any{
		"Stylesheet": template.CSS(stylesheet),
		"RootStyle":  template.CSS(rootStyle),
		"RootClass":  RootClass,
		"Width":      size.Width,
		"Height":     size.Height,
		"Pages":      pages,
	})
}

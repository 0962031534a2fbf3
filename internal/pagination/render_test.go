package pagination

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPages_ReplaysMarkupPerPage(t *testing.T) {
	res := &Result{
		PageSize:   PageSizeA4,
		Stylesheet: ".resume-root h2 { color: #d32f2f; }",
		RootStyle:  "font-size: 12px",
		Pages: []Page{
			{Blocks: []Block{{Markup: `<div class="block">one</div>`, Height: 400}, {Markup: `<div class="block">two</div>`, Height: 400}}},
			{Blocks: []Block{{Markup: `<div class="block">three</div>`, Height: 400}}},
		},
	}
	var b strings.Builder
	require.NoError(t, RenderPages(&b, res))
	out := b.String()

	assert.Equal(t, 2, strings.Count(out, `<div class="document-page">`))
	assert.Contains(t, out, `<div class="block">one</div><div class="block">two</div>`)
	assert.Contains(t, out, ".resume-root h2 { color: #d32f2f; }")
	assert.Contains(t, out, "width: 794px")
	assert.Contains(t, out, "height: 1123px")
	assert.Contains(t, out, `style="font-size: 12px"`)
}

func TestRenderPages_EmptyResult(t *testing.T) {
	var b strings.Builder
	require.NoError(t, RenderPages(&b, &Result{}))
	assert.NotContains(t, b.String(), `<div class="document-page">`)
}

func TestHostDocument_WrapsBodyInRoot(t *testing.T) {
	doc := HostDocument(Rendered{Stylesheet: ".x{}", RootStyle: "color: #000", Body: "<p>a</p><p>b</p>"}, 794)
	assert.Contains(t, doc, `<div id="resume-root" class="resume-root" style="width: 794px; color: #000"><p>a</p><p>b</p></div>`)
}

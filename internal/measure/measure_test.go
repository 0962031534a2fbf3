package measure

import (
	"context"
	"strings"
	"testing"

	"resume-builder/internal/model"
	"resume-builder/internal/pagination"
	"resume-builder/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostDoc(body string) string {
	return pagination.HostDocument(pagination.Rendered{Body: body}, 794)
}

func TestSplitBlocks(t *testing.T) {
	blocks, err := SplitBlocks(hostDoc(`<header class="h"><h1>Ada</h1></header>
<section class="s" style="color: #111"><p>one &amp; two</p></section>text<div></div>`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		`<header class="h"><h1>Ada</h1></header>`,
		`<section class="s" style="color: #111"><p>one &amp; two</p></section>`,
		`<div></div>`,
	}, blocks)
}

func TestSplitBlocks_NoRoot(t *testing.T) {
	_, err := SplitBlocks(`<html><body><p>x</p></body></html>`)
	assert.ErrorIs(t, err, ErrNoRoot)
}

func TestEstimateHost_GrowsWithContent(t *testing.T) {
	h := NewEstimateHost(794)
	short := `<section><h2>Skills</h2><p>Go</p></section>`
	long := `<section><h2>Skills</h2><p>` + strings.Repeat("distributed systems engineering ", 60) + `</p></section>`

	blocks, err := h.Measure(context.Background(), hostDoc(short+long+`<div></div>`))
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Greater(t, blocks[0].Height, 0.0)
	assert.Greater(t, blocks[1].Height, 3*blocks[0].Height)
	assert.Zero(t, blocks[2].Height)
	assert.Equal(t, short, blocks[0].Markup)
}

func TestEstimateHost_RootFontSize(t *testing.T) {
	h := NewEstimateHost(794)
	body := `<p>` + strings.Repeat("word ", 200) + `</p>`
	small, err := h.Measure(context.Background(), pagination.HostDocument(pagination.Rendered{Body: body, RootStyle: "font-size: 10px"}, 794))
	require.NoError(t, err)
	large, err := h.Measure(context.Background(), pagination.HostDocument(pagination.Rendered{Body: body, RootStyle: "font-size: 20px"}, 794))
	require.NoError(t, err)
	assert.Greater(t, large[0].Height, small[0].Height)
}

func TestEstimateHost_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEstimateHost(794).Measure(ctx, hostDoc(`<p>x</p>`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimateHost_PaginatesTemplates(t *testing.T) {
	reg, err := templates.New()
	require.NoError(t, err)
	var experience []any
	for i := 0; i < 40; i++ {
		experience = append(experience, map[string]any{
			"company":     "Company",
			"role":        "Engineer",
			"description": []any{strings.Repeat("Built and operated services ", 6)},
		})
	}
	doc := model.Document{
		TemplateID: "modern",
		Sections:   []string{model.SectionProfile, model.SectionExperience},
		Content: model.Content{
			"profile":    map[string]any{"fullName": "Ada", "summary": "Engineer"},
			"experience": experience,
		},
	}
	p := pagination.NewPaginator(reg, NewEstimateHost(794), pagination.DefaultOptions())
	res, err := p.Paginate(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 3, res.BlockCount(), "header, profile and experience")
	assert.NotEmpty(t, res.Pages)
	for _, page := range res.Pages {
		if len(page.Blocks) > 1 {
			assert.LessOrEqual(t, page.Height(), 1123.0)
		}
	}
}

package infrastructure

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/model"
	"resume-builder/internal/pagination"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBrowser(t *testing.T) *Browser {
	t.Helper()
	path := os.Getenv("CHROME_PATH")
	if path == "" {
		t.Skip("CHROME_PATH not set")
	}
	b, err := NewBrowser(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestChromeHost_MeasuresRootChildren(t *testing.T) {
	b := newTestBrowser(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h, err := NewChromeHost(ctx, b, pagination.PageSizeA4)
	require.NoError(t, err)
	defer h.Close()

	doc := pagination.HostDocument(pagination.Rendered{
		Body: `<div style="height: 100px">a</div><div style="height: 250px; margin: 0">b</div>`,
	}, 794)
	blocks, err := h.Measure(ctx, doc)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, 100.0, blocks[0].Height)
	assert.Equal(t, 250.0, blocks[1].Height)
	assert.Contains(t, blocks[1].Markup, ">b</div>")

	h.Close()
	_, err = h.Measure(ctx, doc)
	assert.ErrorIs(t, err, pagination.ErrHostUnavailable)
}

type photoRenderer struct{}

func (photoRenderer) Render(model.Document) (pagination.Rendered, error) {
	return pagination.Rendered{
		Body: `<div><img id="photo" style="display: block; width: 50px; height: 100px"></div>`,
	}, nil
}

func TestChromeHost_ResizeTriggersPass(t *testing.T) {
	b := newTestBrowser(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h, err := NewChromeHost(ctx, b, pagination.PageSizeA4)
	require.NoError(t, err)
	defer h.Close()

	published := make(chan *pagination.Result, 4)
	s := pagination.NewPaginator(photoRenderer{}, h, pagination.DefaultOptions()).NewSession(
		pagination.StaticSource(model.Document{TemplateID: "photo"}),
		pagination.WithScheduler(pagination.NewFrameScheduler(time.Millisecond)),
		pagination.WithResultHook(func(r *pagination.Result) {
			select {
			case published <- r:
			default:
			}
		}),
	)
	defer s.Close()

	first, err := s.Stable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.BlockCount())
	assert.Equal(t, 100.0, first.Pages[0].Blocks[0].Height)
	<-published

	runCtx, done := bind(ctx, h.tab)
	defer done()
	var height string
	require.NoError(t, chromedp.Run(runCtx,
		chromedp.Evaluate(`document.getElementById("photo").style.height = "300px"`, &height),
	))

	select {
	case r := <-published:
		assert.Greater(t, r.Generation, first.Generation)
	case <-ctx.Done():
		t.Fatal("resizing the photo did not trigger a pass")
	}
}

func TestChromeCapturer_OneImagePerPage(t *testing.T) {
	b := newTestBrowser(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res := &pagination.Result{
		PageSize: pagination.PageSizeA4,
		Pages: []pagination.Page{
			{Blocks: []pagination.Block{{Markup: "<p>one</p>", Height: 20}}},
			{Blocks: []pagination.Block{{Markup: "<p>two</p>", Height: 20}}},
		},
	}
	var html strings.Builder
	require.NoError(t, pagination.RenderPages(&html, res))

	shots, err := NewChromeCapturer(b, pagination.PageSizeA4).Capture(ctx, html.String())
	require.NoError(t, err)
	require.Len(t, shots, 2)
	for _, png := range shots {
		assert.Equal(t, "\x89PNG", string(png[:4]))
	}

	pdf, err := NewChromePrinter(b).RenderHTMLToPDF(ctx, html.String())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

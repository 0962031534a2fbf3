package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngPage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 56))
	for x := 0; x < 40; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func result(pages int) *pagination.Result {
	res := &pagination.Result{PageSize: pagination.PageSizeA4}
	for i := 0; i < pages; i++ {
		res.Pages = append(res.Pages, pagination.Page{Blocks: []pagination.Block{{Markup: "<p>x</p>", Height: 10}}})
	}
	return res
}

type fakeCapturer struct {
	t        *testing.T
	failures int32
	calls    atomic.Int32
	extra    int
	html     string
}

func (f *fakeCapturer) Capture(_ context.Context, html string) ([][]byte, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("tab crashed")
	}
	f.html = html
	n := strings.Count(html, `<div class="document-page">`) + f.extra
	out := make([][]byte, n)
	for i := range out {
		out[i] = pngPage(f.t)
	}
	return out, nil
}

func TestAssemble_OnePagePerImage(t *testing.T) {
	b, err := Assemble([][]byte{pngPage(t), pngPage(t), pngPage(t)}, pagination.PageSizeA4)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
	n, err := PageCount(b)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAssemble_Errors(t *testing.T) {
	_, err := Assemble(nil, pagination.PageSizeA4)
	assert.ErrorIs(t, err, ErrNothingToExport)
	_, err = Assemble([][]byte{[]byte("not a png")}, pagination.PageSizeA4)
	assert.Error(t, err)
}

func TestPageMM(t *testing.T) {
	w, h := pageMM(pagination.PageSizeA4)
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)
	w, h = pageMM(pagination.PageSizeLetter)
	assert.InDelta(t, 215.9, w, 0.01)
	assert.InDelta(t, 279.4, h, 0.01)
}

func TestPipeline_RasterExport(t *testing.T) {
	c := &fakeCapturer{t: t}
	p := NewPipeline(ModeRaster, c, nil)
	out, err := p.Export(context.Background(), result(2))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pages)
	assert.Contains(t, c.html, "paginated-preview-container")
	assert.Equal(t, c.html, out.HTML)
}

func TestPipeline_RetriesWithBackoff(t *testing.T) {
	c := &fakeCapturer{t: t, failures: 2}
	p := NewPipeline(ModeRaster, c, nil)
	p.Backoff = time.Millisecond
	out, err := p.Export(context.Background(), result(1))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Pages)
	assert.Equal(t, int32(3), c.calls.Load())
}

func TestPipeline_GivesUp(t *testing.T) {
	c := &fakeCapturer{t: t, failures: 10}
	p := NewPipeline(ModeRaster, c, nil)
	p.Backoff = time.Millisecond
	_, err := p.Export(context.Background(), result(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempt(s)")
	assert.Equal(t, int32(3), c.calls.Load())
}

type downCapturer struct{ calls atomic.Int32 }

func (d *downCapturer) Capture(context.Context, string) ([][]byte, error) {
	d.calls.Add(1)
	return nil, pagination.ErrHostUnavailable
}

func TestPipeline_HostUnavailableStopsEarly(t *testing.T) {
	c := &downCapturer{}
	p := NewPipeline(ModeRaster, c, nil)
	p.Backoff = time.Millisecond
	_, err := p.Export(context.Background(), result(1))
	assert.ErrorIs(t, err, pagination.ErrHostUnavailable)
	assert.ErrorContains(t, err, "after 1 attempt(s)")
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestPipeline_PageMismatchFails(t *testing.T) {
	c := &fakeCapturer{t: t, extra: 1}
	p := NewPipeline(ModeRaster, c, nil)
	p.Backoff = time.Millisecond
	_, err := p.Export(context.Background(), result(2))
	assert.ErrorContains(t, err, "captured 3 pages, expected 2")
}

func TestPipeline_NothingToExport(t *testing.T) {
	p := NewPipeline(ModeRaster, &fakeCapturer{t: t}, nil)
	_, err := p.Export(context.Background(), &pagination.Result{})
	assert.ErrorIs(t, err, ErrNothingToExport)
}

type fakePrinter struct{ pdf []byte }

func (f fakePrinter) RenderHTMLToPDF(context.Context, string) ([]byte, error) { return f.pdf, nil }

func TestPipeline_PrintMode(t *testing.T) {
	doc, err := Assemble([][]byte{pngPage(t)}, pagination.PageSizeA4)
	require.NoError(t, err)

	out, err := NewPipeline(ModePrint, nil, fakePrinter{pdf: doc}).Export(context.Background(), result(1))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Pages)

	p := NewPipeline(ModePrint, nil, fakePrinter{pdf: []byte("<html>")})
	p.Backoff = time.Millisecond
	_, err = p.Export(context.Background(), result(1))
	assert.ErrorContains(t, err, "invalid PDF output")
}

func TestPipeline_CancelledDuringBackoff(t *testing.T) {
	c := &fakeCapturer{t: t, failures: 10}
	p := NewPipeline(ModeRaster, c, nil)
	p.Backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Export(ctx, result(1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Print ")
	require.NoError(t, err)
	assert.Equal(t, ModePrint, m)
	_, err = ParseMode("fax")
	assert.Error(t, err)
}

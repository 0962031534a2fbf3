package infrastructure

import (
	"context"
	"testing"

	"resume-builder/internal/measure"
	"resume-builder/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendering_EstimateWithoutChrome(t *testing.T) {
	r, err := NewRendering(context.Background(), RenderingConfig{
		MeasureMode: "estimate",
		ExportMode:  "raster",
		PageSize:    pagination.PageSizeA4,
	})
	require.NoError(t, err)
	defer r.Close()

	assert.Nil(t, r.Browser)
	h, release, err := r.NewHost(context.Background())
	require.NoError(t, err)
	release()
	assert.IsType(t, &measure.EstimateHost{}, h)

	res := &pagination.Result{
		PageSize: pagination.PageSizeA4,
		Pages:    []pagination.Page{{Blocks: []pagination.Block{{Markup: "<p>x</p>", Height: 10}}}},
	}
	_, err = r.Exporter.Export(context.Background(), res)
	assert.ErrorIs(t, err, pagination.ErrHostUnavailable)
}

func TestRendering_RejectsUnknownModes(t *testing.T) {
	_, err := NewRendering(context.Background(), RenderingConfig{MeasureMode: "guess", ExportMode: "raster"})
	assert.Error(t, err)
	_, err = NewRendering(context.Background(), RenderingConfig{MeasureMode: "estimate", ExportMode: "docx"})
	assert.Error(t, err)
}

func TestRendering_ChromeHost(t *testing.T) {
	b := newTestBrowser(t)
	r := &Rendering{Browser: b, cfg: RenderingConfig{MeasureMode: "chrome", PageSize: pagination.PageSizeA4}}
	h, release, err := r.NewHost(context.Background())
	require.NoError(t, err)
	defer release()
	assert.IsType(t, &ChromeHost{}, h)
}

package infrastructure

import (
	"context"
	"fmt"

	"resume-builder/internal/export"
	"resume-builder/internal/measure"
	"resume-builder/internal/pagination"

	"github.com/rs/zerolog/log"
)

// RenderingConfig selects how pages are measured and exported.
type RenderingConfig struct {
	MeasureMode string // chrome or estimate
	ExportMode  string // raster or print
	ChromePath  string
	PageSize    pagination.PageSize
	// Export starts Chrome for exporting even when measuring by estimate.
	Export bool
}

// Rendering owns the browser shared by measurement hosts and the exporter.
type Rendering struct {
	Browser  *Browser
	Exporter *export.Pipeline

	cfg      RenderingConfig
	estimate *measure.EstimateHost
}

func NewRendering(ctx context.Context, cfg RenderingConfig) (*Rendering, error) {
	mode, err := export.ParseMode(cfg.ExportMode)
	if err != nil {
		return nil, err
	}
	r := &Rendering{cfg: cfg}

	switch cfg.MeasureMode {
	case "chrome":
		b, err := NewBrowser(ctx, cfg.ChromePath)
		if err != nil {
			return nil, err
		}
		r.Browser = b
	case "estimate":
		r.estimate = measure.NewEstimateHost(cfg.PageSize.Width)
		if cfg.Export {
			b, err := NewBrowser(ctx, cfg.ChromePath)
			if err != nil {
				// measuring still works; exports report the host as unavailable
				log.Warn().Err(err).Msg("chrome unavailable, PDF export disabled")
			}
			r.Browser = b
		}
	default:
		return nil, fmt.Errorf("unknown measure mode %q", cfg.MeasureMode)
	}

	r.Exporter = export.NewPipeline(mode, NewChromeCapturer(r.Browser, cfg.PageSize), NewChromePrinter(r.Browser))
	log.Info().Str("measure", cfg.MeasureMode).Str("export", string(mode)).Bool("chrome", r.Browser.Alive()).Msg("rendering ready")
	return r, nil
}

// NewHost returns a measurement host and its release func. Chrome hosts are
// one tab each; the estimate host is shared.
func (r *Rendering) NewHost(ctx context.Context) (pagination.Host, func(), error) {
	if r.estimate != nil {
		return r.estimate, func() {}, nil
	}
	h, err := NewChromeHost(ctx, r.Browser, r.cfg.PageSize)
	if err != nil {
		return nil, nil, err
	}
	return h, h.Close, nil
}

func (r *Rendering) Close() {
	r.Browser.Close()
}

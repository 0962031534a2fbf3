// Package export turns a pagination result into a PDF file.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/pagination"

	"github.com/rs/zerolog/log"
)

// ErrNothingToExport is returned for a result without pages.
var ErrNothingToExport = errors.New("nothing to export")

// Capturer rasterizes each .document-page of a paginated document.
type Capturer interface {
	Capture(ctx context.Context, pagesHTML string) ([][]byte, error)
}

// Printer converts a paginated document straight to PDF.
type Printer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

type Mode string

const (
	// ModeRaster captures every page as an image and assembles the PDF from
	// them, so the file looks exactly like the preview.
	ModeRaster Mode = "raster"
	// ModePrint uses the browser's print backend and keeps text selectable.
	ModePrint Mode = "print"
)

// ParseMode accepts "raster" and "print"; anything else is an error.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRaster, ModePrint:
		return m, nil
	}
	return "", fmt.Errorf("unknown export mode %q", s)
}

// Pipeline renders pages, converts them to PDF and checks the output.
type Pipeline struct {
	Mode     Mode
	Capturer Capturer
	Printer  Printer
	// Attempts is the number of tries per conversion, Backoff the delay
	// before the second one; it doubles after every failure.
	Attempts int
	Backoff  time.Duration
}

func NewPipeline(mode Mode, c Capturer, p Printer) *Pipeline {
	return &Pipeline{Mode: mode, Capturer: c, Printer: p, Attempts: 3, Backoff: time.Second}
}

// Output is an exported document.
type Output struct {
	PDF   []byte
	HTML  string
	Pages int
}

// Export converts res to PDF.
func (p *Pipeline) Export(ctx context.Context, res *pagination.Result) (*Output, error) {
	if res.Empty() {
		return nil, ErrNothingToExport
	}
	var html strings.Builder
	if err := pagination.RenderPages(&html, res); err != nil {
		return nil, fmt.Errorf("render pages: %w", err)
	}

	var convert func(context.Context) ([]byte, error)
	switch p.Mode {
	case ModePrint:
		if p.Printer == nil {
			return nil, errors.New("export: no printer configured")
		}
		convert = func(ctx context.Context) ([]byte, error) {
			return p.Printer.RenderHTMLToPDF(ctx, html.String())
		}
	default:
		if p.Capturer == nil {
			return nil, errors.New("export: no capturer configured")
		}
		convert = func(ctx context.Context) ([]byte, error) {
			shots, err := p.Capturer.Capture(ctx, html.String())
			if err != nil {
				return nil, err
			}
			if len(shots) != len(res.Pages) {
				return nil, fmt.Errorf("captured %d pages, expected %d", len(shots), len(res.Pages))
			}
			return Assemble(shots, res.PageSize)
		}
	}

	out, err := p.retry(ctx, func(ctx context.Context) ([]byte, error) {
		b, err := convert(ctx)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(string(b), "%PDF") {
			return nil, fmt.Errorf("invalid PDF output (len=%d)", len(b))
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	n, err := PageCount(out)
	if err != nil {
		return nil, err
	}
	if p.Mode != ModePrint && n != len(res.Pages) {
		return nil, fmt.Errorf("pdf has %d pages, expected %d", n, len(res.Pages))
	}
	if n != len(res.Pages) {
		log.Warn().Int("pdf_pages", n).Int("pages", len(res.Pages)).Msg("export: printed page count differs from preview")
	}
	return &Output{PDF: out, HTML: html.String(), Pages: n}, nil
}

func (p *Pipeline) retry(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	made := 0
	for i := 0; i < attempts; i++ {
		made++
		b, err := fn(ctx)
		if err == nil {
			return b, nil
		}
		lastErr = err
		if errors.Is(err, pagination.ErrHostUnavailable) || errors.Is(err, ErrNothingToExport) {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("export: conversion failed")
		// exponential backoff before retrying
		if i < attempts-1 {
			select {
			case <-time.After(p.Backoff * time.Duration(1<<i)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("export failed after %d attempt(s): %w", made, lastErr)
}

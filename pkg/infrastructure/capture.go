package infrastructure

import (
	"context"
	"fmt"

	"resume-builder/internal/pagination"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// CaptureScale is the device pixel ratio pages are rasterized at.
const CaptureScale = 2

// ChromeCapturer rasterizes every .document-page of a paginated document.
type ChromeCapturer struct {
	browser *Browser
	size    pagination.PageSize
}

func NewChromeCapturer(b *Browser, size pagination.PageSize) *ChromeCapturer {
	return &ChromeCapturer{browser: b, size: size}
}

// Capture returns one PNG per page, in page order.
func (c *ChromeCapturer) Capture(ctx context.Context, pagesHTML string) ([][]byte, error) {
	if !c.browser.Alive() {
		return nil, pagination.ErrHostUnavailable
	}
	tab, cancel := c.browser.NewTab()
	defer cancel()
	if err := chromedp.Run(tab); err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	runCtx, done := bind(ctx, tab)
	defer done()

	var count int
	err := chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(c.size.Width), int64(c.size.Height), CaptureScale, false),
		chromedp.Navigate("about:blank"),
		setContent(pagesHTML),
		chromedp.Evaluate(settleScript, nil, awaitPromise),
		chromedp.Evaluate(`document.querySelectorAll(".document-page").length`, &count),
	)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	shots := make([][]byte, count)
	for i := range shots {
		sel := fmt.Sprintf(".paginated-preview-container > .document-page:nth-of-type(%d)", i+1)
		if err := chromedp.Run(runCtx, chromedp.ScreenshotScale(sel, 1, &shots[i], chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("capture page %d: %w", i+1, err)
		}
	}
	return shots, nil
}

// ChromePrinter prints a paginated document with Chrome's own PDF backend.
// The page size comes from the document's @page rule.
type ChromePrinter struct {
	browser *Browser
}

func NewChromePrinter(b *Browser) *ChromePrinter { return &ChromePrinter{browser: b} }

func (p *ChromePrinter) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	if !p.browser.Alive() {
		return nil, pagination.ErrHostUnavailable
	}
	tab, cancel := p.browser.NewTab()
	defer cancel()
	if err := chromedp.Run(tab); err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	runCtx, done := bind(ctx, tab)
	defer done()

	var pdfBuf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		setContent(html),
		chromedp.Evaluate(settleScript, nil, awaitPromise),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm -> inches: 8.27 x 11.69
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).WithMarginBottom(0).WithMarginLeft(0).WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

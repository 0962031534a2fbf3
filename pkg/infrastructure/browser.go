package infrastructure

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Browser is one long-running headless Chrome process. Tabs opened on it share
// the process but not their documents.
type Browser struct {
	ctx         context.Context
	cancelAlloc context.CancelFunc
	cancel      context.CancelFunc
}

// NewBrowser starts Chrome. chromePath may be empty to use the default lookup.
func NewBrowser(ctx context.Context, chromePath string) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	bctx, cancel := chromedp.NewContext(allocCtx)

	// ensure Chrome starts; the first Run must use bctx itself since the
	// browser lives as long as the context it was started with
	if err := chromedp.Run(bctx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &Browser{ctx: bctx, cancelAlloc: cancelAlloc, cancel: cancel}, nil
}

// NewTab returns a context for a new tab. The tab is created by the first
// chromedp.Run on exactly that context; cancelling it closes the tab.
func (b *Browser) NewTab() (context.Context, context.CancelFunc) {
	return chromedp.NewContext(b.ctx)
}

// Alive reports whether the browser process is still usable.
func (b *Browser) Alive() bool {
	return b != nil && b.ctx.Err() == nil
}

// Close shuts Chrome down.
func (b *Browser) Close() {
	if b == nil {
		return
	}
	b.cancel()
	b.cancelAlloc()
}

// bind runs actions on tab while honouring the caller's ctx as well.
func bind(ctx, tab context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(tab)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// setContent replaces the document of the tab's main frame.
func setContent(markup string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
	})
}

// settleScript resolves once web fonts and images have loaded.
const settleScript = `(async () => {
  await document.fonts.ready;
  await Promise.all(Array.from(document.images)
    .filter((img) => !img.complete)
    .map((img) => new Promise((resolve) => { img.onload = img.onerror = resolve; })));
  return true;
})()`

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"resume-builder/internal/pagination"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

const resizeBinding = "__resumeRootResized"

// measureScript reads every direct child of the root once layout has settled
// and (re)installs a ResizeObserver that reports later height changes of the
// root through the binding. Only changes are reported, so re-measuring does
// not feed back into another notification.
var measureScript = fmt.Sprintf(`(async () => {
  await document.fonts.ready;
  await Promise.all(Array.from(document.images)
    .filter((img) => !img.complete)
    .map((img) => new Promise((resolve) => { img.onload = img.onerror = resolve; })));
  const root = document.getElementById(%[1]q);
  if (!root) return null;
  const blocks = Array.from(root.children).map((el) => ({ markup: el.outerHTML, height: el.offsetHeight }));
  window.__resumeLastHeight = root.offsetHeight;
  if (window.__resumeObserver) window.__resumeObserver.disconnect();
  window.__resumeObserver = new ResizeObserver(() => {
    const r = document.getElementById(%[1]q);
    if (!r || r.offsetHeight === window.__resumeLastHeight) return;
    window.__resumeLastHeight = r.offsetHeight;
    window[%[2]q](String(r.offsetHeight));
  });
  window.__resumeObserver.observe(root);
  return blocks;
})()`, pagination.RootID, resizeBinding)

var errNoRoot = errors.New("chrome host: measurement root missing from document")

// ChromeHost measures documents in its own Chrome tab. Measurements on one
// host are serialized; each preview session should own a host.
type ChromeHost struct {
	tab    context.Context
	cancel context.CancelFunc

	mu sync.Mutex

	obsMu     sync.Mutex
	observers map[int]func()
	nextObs   int
}

// NewChromeHost opens a tab on b with a viewport of the given page size.
func NewChromeHost(ctx context.Context, b *Browser, size pagination.PageSize) (*ChromeHost, error) {
	tab, cancel := b.NewTab()
	h := &ChromeHost{tab: tab, cancel: cancel, observers: make(map[int]func())}

	chromedp.ListenTarget(tab, func(ev any) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == resizeBinding {
			go h.notify()
		}
	})

	if err := chromedp.Run(tab); err != nil {
		cancel()
		return nil, fmt.Errorf("open chrome host tab: %w", err)
	}
	runCtx, done := bind(ctx, tab)
	defer done()
	err := chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(size.Width), int64(size.Height), 1, false),
		runtime.AddBinding(resizeBinding),
		chromedp.Navigate("about:blank"),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open chrome host tab: %w", err)
	}
	return h, nil
}

// Measure implements pagination.Host.
func (h *ChromeHost) Measure(ctx context.Context, markup string) ([]pagination.Block, error) {
	if h.tab.Err() != nil {
		return nil, pagination.ErrHostUnavailable
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	runCtx, done := bind(ctx, h.tab)
	defer done()
	var blocks []pagination.Block
	err := chromedp.Run(runCtx,
		setContent(markup),
		chromedp.Evaluate(measureScript, &blocks, awaitPromise),
	)
	if err != nil {
		if h.tab.Err() != nil {
			return nil, pagination.ErrHostUnavailable
		}
		return nil, err
	}
	if blocks == nil {
		return nil, errNoRoot
	}
	return blocks, nil
}

// ObserveResize implements pagination.ResizeObserver.
func (h *ChromeHost) ObserveResize(fn func()) func() {
	h.obsMu.Lock()
	defer h.obsMu.Unlock()
	id := h.nextObs
	h.nextObs++
	h.observers[id] = fn
	return func() {
		h.obsMu.Lock()
		defer h.obsMu.Unlock()
		delete(h.observers, id)
	}
}

func (h *ChromeHost) notify() {
	h.obsMu.Lock()
	fns := make([]func(), 0, len(h.observers))
	for _, fn := range h.observers {
		fns = append(fns, fn)
	}
	h.obsMu.Unlock()
	log.Debug().Int("observers", len(fns)).Msg("chrome host: root resized")
	for _, fn := range fns {
		fn()
	}
}

// Close closes the tab. Later measurements fail with ErrHostUnavailable.
func (h *ChromeHost) Close() {
	h.cancel()
}

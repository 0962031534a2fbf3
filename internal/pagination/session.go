package pagination

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"resume-builder/internal/model"

	"github.com/rs/zerolog/log"
)

// Source supplies the current document. It is re-read on every pass.
type Source interface {
	Snapshot(ctx context.Context) (model.Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (model.Document, error)

func (f SourceFunc) Snapshot(ctx context.Context) (model.Document, error) { return f(ctx) }

// StaticSource always returns the same document.
func StaticSource(doc model.Document) Source {
	return SourceFunc(func(context.Context) (model.Document, error) { return doc, nil })
}

// Session keeps the pagination of one document current. Triggers are
// coalesced by its Scheduler; passes are serialized and each publishes a new
// Result that replaces the previous one.
type Session struct {
	paginator *Paginator
	source    Source
	sched     Scheduler
	onResult  func(*Result)
	onClose   func()

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	gen    uint64
	result atomic.Pointer[Result]
	// requested counts triggers; applied is the count the published result
	// reflects. A skipped or failed pass leaves applied behind.
	requested atomic.Uint64
	applied   uint64
	passes    atomic.Uint64
	used      atomic.Int64
	closed    atomic.Bool

	stopObserving func()
}

type SessionOption func(*Session)

// WithScheduler replaces the default frame scheduler.
func WithScheduler(s Scheduler) SessionOption {
	return func(ss *Session) { ss.sched = s }
}

// WithResultHook registers fn to receive every published result.
func WithResultHook(fn func(*Result)) SessionOption {
	return func(ss *Session) { ss.onResult = fn }
}

// WithCloseHook registers fn to run once when the session is closed.
func WithCloseHook(fn func()) SessionOption {
	return func(ss *Session) { ss.onClose = fn }
}

// NewSession starts a session over src. If the paginator's host implements
// ResizeObserver, size changes it reports invalidate the session. No pass runs
// until the first Invalidate or Stable call.
func (p *Paginator) NewSession(src Source, opts ...SessionOption) *Session {
	s := &Session{paginator: p, source: src}
	for _, o := range opts {
		o(s)
	}
	if s.sched == nil {
		s.sched = NewFrameScheduler(DefaultFrame)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.touch()
	if ro, ok := p.host.(ResizeObserver); ok {
		s.stopObserving = ro.ObserveResize(s.Invalidate)
	}
	return s
}

// Invalidate schedules a pass for the next frame, superseding any pass that
// is already pending.
func (s *Session) Invalidate() {
	if s.closed.Load() {
		return
	}
	s.touch()
	s.requested.Add(1)
	s.sched.Schedule(s.pass)
}

func (s *Session) pass() {
	if _, err := s.recalculate(s.ctx); err != nil && !errors.Is(err, ErrHostUnavailable) {
		log.Error().Err(err).Msg("pagination: pass failed")
	}
}

func (s *Session) recalculate(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recalculateLocked(ctx)
}

func (s *Session) recalculateLocked(ctx context.Context) (*Result, error) {
	req := s.requested.Load()
	doc, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.paginator.Paginate(ctx, doc)
	if errors.Is(err, ErrHostUnavailable) {
		log.Debug().Msg("pagination: host not ready, pass skipped")
		return s.result.Load(), err
	}
	if err != nil {
		return nil, err
	}

	s.gen++
	res.Generation = s.gen
	s.applied = req
	s.result.Store(res)
	s.passes.Add(1)
	log.Debug().
		Uint64("generation", res.Generation).
		Int("pages", len(res.Pages)).
		Int("blocks", res.BlockCount()).
		Msg("pagination: pass completed")

	if s.onResult != nil {
		s.onResult(res)
	}
	return res, nil
}

// Result returns the last published result, or nil before the first pass.
func (s *Session) Result() *Result {
	return s.result.Load()
}

// Stable returns a result that reflects every trigger so far. A pending pass
// is taken over and run on the caller's goroutine, and a pass already running
// is waited for. When the last result is current it is returned as is.
func (s *Session) Stable(ctx context.Context) (*Result, error) {
	if s.closed.Load() {
		return nil, errors.New("pagination: session closed")
	}
	s.touch()
	s.sched.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if res := s.result.Load(); res != nil && s.applied >= s.requested.Load() {
		return res, nil
	}
	res, err := s.recalculateLocked(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Passes is the number of completed passes.
func (s *Session) Passes() uint64 { return s.passes.Load() }

// LastUsed is the time of the last Invalidate or Stable call.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.used.Load()) }

func (s *Session) touch() { s.used.Store(time.Now().UnixNano()) }

// Close cancels the pending pass and any size observation. It is safe to call
// more than once.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.sched.Stop()
	if s.stopObserving != nil {
		s.stopObserving()
	}
	s.cancel()
	if s.onClose != nil {
		s.onClose()
	}
}

package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/pagination"

	"github.com/rs/zerolog/log"
)

// HostFactory provides the measurement host of a new preview session and a
// func that releases it.
type HostFactory func(ctx context.Context) (pagination.Host, func(), error)

// SharedHost hands the same host to every session and never releases it.
func SharedHost(h pagination.Host) HostFactory {
	return func(context.Context) (pagination.Host, func(), error) {
		return h, func() {}, nil
	}
}

// PreviewService keeps one pagination session per resume being previewed.
// Sessions re-read the resume from the store on every pass.
type PreviewService struct {
	repo     ResumeRepo
	renderer pagination.Renderer
	newHost  HostFactory
	opts     pagination.Options
	frame    time.Duration

	mu       sync.Mutex
	sessions map[string]*pagination.Session
}

func NewPreviewService(repo ResumeRepo, r pagination.Renderer, hosts HostFactory, opts pagination.Options, frame time.Duration) *PreviewService {
	return &PreviewService{
		repo:     repo,
		renderer: r,
		newHost:  hosts,
		opts:     opts,
		frame:    frame,
		sessions: make(map[string]*pagination.Session),
	}
}

func (s *PreviewService) session(ctx context.Context, resumeID string) (*pagination.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[resumeID]; ok {
		return sess, nil
	}

	host, release, err := s.newHost(ctx)
	if err != nil {
		return nil, err
	}
	src := pagination.SourceFunc(func(ctx context.Context) (model.Document, error) {
		r, err := s.repo.Get(ctx, resumeID)
		if err != nil {
			return model.Document{}, err
		}
		return r.Document(), nil
	})
	p := pagination.NewPaginator(s.renderer, host, s.opts)
	sess := p.NewSession(src,
		pagination.WithScheduler(pagination.NewFrameScheduler(s.frame)),
		pagination.WithCloseHook(release),
		pagination.WithResultHook(func(res *pagination.Result) {
			log.Debug().Str("resume", resumeID).Uint64("generation", res.Generation).Int("pages", len(res.Pages)).Msg("preview: pages updated")
		}),
	)
	s.sessions[resumeID] = sess
	return sess, nil
}

// Pages returns the current, settled pagination of a resume. A session whose
// host went away or whose resume no longer exists is closed, so the next call
// starts over with a fresh host.
func (s *PreviewService) Pages(ctx context.Context, resumeID string) (*pagination.Result, error) {
	sess, err := s.session(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	res, err := sess.Stable(ctx)
	if errors.Is(err, pagination.ErrHostUnavailable) || errors.Is(err, domain.ErrNotFound) {
		log.Debug().Err(err).Str("resume", resumeID).Msg("preview: closing session")
		s.dropSession(resumeID, sess)
	}
	return res, err
}

// Preview writes the paginated HTML of a resume.
func (s *PreviewService) Preview(ctx context.Context, resumeID string, w io.Writer) (*pagination.Result, error) {
	res, err := s.Pages(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	return res, pagination.RenderPages(w, res)
}

// Invalidate schedules a pass for an open session; it is a no-op otherwise.
func (s *PreviewService) Invalidate(resumeID string) {
	s.mu.Lock()
	sess := s.sessions[resumeID]
	s.mu.Unlock()
	if sess != nil {
		sess.Invalidate()
	}
}

// InvalidateAll schedules a pass in every open session, e.g. after the
// templates changed.
func (s *PreviewService) InvalidateAll() {
	s.mu.Lock()
	open := make([]*pagination.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()
	for _, sess := range open {
		sess.Invalidate()
	}
}

// Drop closes the session of a resume.
func (s *PreviewService) Drop(resumeID string) {
	s.mu.Lock()
	sess := s.sessions[resumeID]
	delete(s.sessions, resumeID)
	s.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

// dropSession closes sess unless it was already replaced.
func (s *PreviewService) dropSession(resumeID string, sess *pagination.Session) {
	s.mu.Lock()
	if s.sessions[resumeID] == sess {
		delete(s.sessions, resumeID)
	}
	s.mu.Unlock()
	sess.Close()
}

// EvictIdle closes sessions unused for longer than maxIdle and returns how
// many were closed.
func (s *PreviewService) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	var idle []*pagination.Session
	for id, sess := range s.sessions {
		if sess.LastUsed().Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, sess := range idle {
		sess.Close()
	}
	return len(idle)
}

// Open is the number of open sessions.
func (s *PreviewService) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close closes every session.
func (s *PreviewService) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*pagination.Session)
	s.mu.Unlock()
	for _, sess := range all {
		sess.Close()
	}
}

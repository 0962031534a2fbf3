package pagination

import (
	"sync"
	"time"
)

// DefaultFrame approximates one display refresh at 60 Hz.
const DefaultFrame = 16 * time.Millisecond

// Scheduler coalesces recomputation requests. At most one task is pending at
// a time; scheduling again replaces the pending task.
type Scheduler interface {
	// Schedule replaces any pending task with task and arms the next frame.
	Schedule(task func())
	// Cancel drops the pending task and reports whether there was one.
	Cancel() bool
	// Flush runs the pending task now, on the caller's goroutine, and
	// reports whether there was one.
	Flush() bool
	// Stop cancels the pending task and ignores every later Schedule.
	Stop()
}

// FrameScheduler runs the last scheduled task once per frame interval.
type FrameScheduler struct {
	mu      sync.Mutex
	frame   time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64
	stopped bool
}

// NewFrameScheduler returns a scheduler that defers tasks by frame.
func NewFrameScheduler(frame time.Duration) *FrameScheduler {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &FrameScheduler{frame: frame}
}

func (s *FrameScheduler) Schedule(task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || task == nil {
		return
	}
	s.disarm()
	s.pending = task
	seq := s.seq
	s.timer = time.AfterFunc(s.frame, func() { s.fire(seq) })
}

func (s *FrameScheduler) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.pending == nil {
		s.mu.Unlock()
		return
	}
	task := s.pending
	s.pending = nil
	s.timer = nil
	s.seq++
	s.mu.Unlock()
	task()
}

func (s *FrameScheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.pending != nil
	s.disarm()
	return had
}

func (s *FrameScheduler) Flush() bool {
	s.mu.Lock()
	task := s.pending
	s.disarm()
	s.mu.Unlock()
	if task == nil {
		return false
	}
	task()
	return true
}

func (s *FrameScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarm()
	s.stopped = true
}

// Pending reports whether a task is waiting for its frame.
func (s *FrameScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// disarm must be called with mu held. Bumping seq invalidates a timer whose
// callback already started but has not taken the lock yet.
func (s *FrameScheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.seq++
}

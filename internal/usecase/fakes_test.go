package usecase

import (
	"context"
	"sort"
	"sync"

	"resume-builder/internal/domain"
)

type memRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Resume
	gets int
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]domain.Resume{}} }

func (m *memRepo) Create(_ context.Context, r *domain.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = *r
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID string) ([]*domain.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Resume{}
	for _, r := range m.byID {
		if r.UserID == userID {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memRepo) Update(_ context.Context, r *domain.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; !ok {
		return domain.ErrNotFound
	}
	m.byID[r.ID] = *r
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memRepo) Ping(context.Context) error { return nil }

type recordingNotifier struct {
	invalidated []string
	dropped     []string
}

func (n *recordingNotifier) Invalidate(id string) { n.invalidated = append(n.invalidated, id) }
func (n *recordingNotifier) Drop(id string)       { n.dropped = append(n.dropped, id) }

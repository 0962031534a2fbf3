package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
)

var (
	// ErrInvalidResume wraps validation failures of resume input.
	ErrInvalidResume = errors.New("invalid resume")
	// ErrForbidden is returned when a caller asks for another user's data.
	ErrForbidden = errors.New("forbidden")
)

type ResumeRepo interface {
	Create(ctx context.Context, r *domain.Resume) error
	Get(ctx context.Context, id string) (*domain.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Resume, error)
	Update(ctx context.Context, r *domain.Resume) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ResumeInput is what the editor sends on create and update.
type ResumeInput struct {
	Title          string               `json:"title"`
	Content        model.Content        `json:"content"`
	TemplateID     string               `json:"templateId"`
	Sections       []string             `json:"sections"`
	Customizations model.Customizations `json:"customizations"`
}

func (in ResumeInput) document() model.Document {
	return model.Document{
		Content:        in.Content,
		Sections:       in.Sections,
		TemplateID:     in.TemplateID,
		Customizations: in.Customizations,
	}
}

func (in ResumeInput) validate() error {
	if err := model.Validate(in.document()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResume, err)
	}
	return nil
}

// ChangeNotifier is told about resumes whose rendering is now stale.
type ChangeNotifier interface {
	Invalidate(resumeID string)
	Drop(resumeID string)
}

// ResumeService owns resume persistence. Every resume belongs to one user and
// is invisible to everybody else.
type ResumeService struct {
	repo     ResumeRepo
	notifier ChangeNotifier
}

func NewResumeService(repo ResumeRepo, n ChangeNotifier) *ResumeService {
	return &ResumeService{repo: repo, notifier: n}
}

func (s *ResumeService) Create(ctx context.Context, userID string, in ResumeInput) (*domain.Resume, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Untitled Resume"
	}
	r := domain.NewResume(userID, title, in.document())
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the resume if it belongs to userID.
func (s *ResumeService) Get(ctx context.Context, userID, id string) (*domain.Resume, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// List returns owner's resumes, newest first. Callers may only list their own.
func (s *ResumeService) List(ctx context.Context, callerID, owner string) ([]*domain.Resume, error) {
	if owner == "" {
		owner = callerID
	}
	if owner != callerID {
		return nil, ErrForbidden
	}
	return s.repo.ListByUser(ctx, owner)
}

func (s *ResumeService) Update(ctx context.Context, userID, id string, in ResumeInput) (*domain.Resume, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		r.Title = title
	}
	r.SetDocument(in.document())
	r.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Invalidate(id)
	}
	return r, nil
}

func (s *ResumeService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Drop(id)
	}
	return nil
}

func (s *ResumeService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/pagination"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrJobNotFound is returned for unknown export job ids.
var ErrJobNotFound = errors.New("export job not found")

type Exporter interface {
	Export(ctx context.Context, res *pagination.Result) (*export.Output, error)
}

// PageSource yields the settled pagination of a resume.
type PageSource interface {
	Pages(ctx context.Context, resumeID string) (*pagination.Result, error)
}

// Artifact is an exported PDF kept on disk.
type Artifact struct {
	Path  string
	HTML  string
	PDF   []byte
	Pages int
}

// ExportService exports resumes to PDF, either inline or as background jobs,
// and keeps every produced file under its artifact directory.
type ExportService struct {
	pages    PageSource
	exporter Exporter
	dir      string
	timeout  time.Duration

	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.ExportJob
	wg   sync.WaitGroup
}

func NewExportService(pages PageSource, e Exporter, artifactDir string) *ExportService {
	return &ExportService{
		pages:    pages,
		exporter: e,
		dir:      artifactDir,
		timeout:  2 * time.Minute,
		jobs:     make(map[uuid.UUID]*domain.ExportJob),
	}
}

// ExportPDF exports a resume now and stores the artifacts.
func (s *ExportService) ExportPDF(ctx context.Context, resumeID string) (*Artifact, error) {
	res, err := s.pages.Pages(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	out, err := s.exporter.Export(ctx, res)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	ts := time.Now().UTC().Format("20060102T150405.000000000")
	base := fmt.Sprintf("resume_%s_%s", safeName(resumeID), ts)
	if err := os.WriteFile(filepath.Join(s.dir, base+".html"), []byte(out.HTML), 0o644); err != nil {
		return nil, err
	}
	pdfPath := filepath.Join(s.dir, base+".pdf")
	if err := os.WriteFile(pdfPath, out.PDF, 0o644); err != nil {
		return nil, err
	}
	return &Artifact{Path: pdfPath, HTML: filepath.Join(s.dir, base+".html"), PDF: out.PDF, Pages: out.Pages}, nil
}

// Start queues a background export and returns the pending job right away.
func (s *ExportService) Start(resumeID, userID string) *domain.ExportJob {
	job := domain.NewExportJob(resumeID, userID)
	s.mu.Lock()
	s.jobs[job.ID] = job
	snapshot := *job
	s.mu.Unlock()

	s.wg.Add(1)
	go func(id uuid.UUID) {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.run(ctx, id, resumeID)
	}(job.ID)
	return &snapshot
}

func (s *ExportService) run(ctx context.Context, id uuid.UUID, resumeID string) {
	s.update(id, func(j *domain.ExportJob) { j.Status = domain.ExportRunning })
	art, err := s.ExportPDF(ctx, resumeID)
	if err != nil {
		log.Error().Err(err).Str("job", id.String()).Str("resume", resumeID).Msg("export job failed")
		s.update(id, func(j *domain.ExportJob) {
			j.Status = domain.ExportFailed
			j.Error = err.Error()
		})
		return
	}
	s.update(id, func(j *domain.ExportJob) {
		j.Status = domain.ExportCompleted
		j.Pages = art.Pages
		j.Metadata["generated_pdf"] = art.Path
		j.Metadata["generated_html"] = art.HTML
	})
	log.Info().Str("job", id.String()).Str("resume", resumeID).Int("pages", art.Pages).Msg("export job completed")
}

func (s *ExportService) update(id uuid.UUID, fn func(*domain.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
		j.UpdatedAt = time.Now().UTC()
	}
}

// Job returns a copy of the job if it belongs to userID.
func (s *ExportService) Job(userID string, id uuid.UUID) (*domain.ExportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok || j.UserID != userID {
		return nil, ErrJobNotFound
	}
	cp := *j
	cp.Metadata = make(map[string]interface{}, len(j.Metadata))
	for k, v := range j.Metadata {
		cp.Metadata[k] = v
	}
	return &cp, nil
}

// Wait blocks until running jobs finish or ctx is done.
func (s *ExportService) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Prune deletes artifact files older than ttl and forgets finished jobs of
// the same age. It returns the number of files removed.
func (s *ExportService) Prune(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	for id, j := range s.jobs {
		if j.Done() && j.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "resume_") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func safeName(s string) string {
	if s = unsafeChars.ReplaceAllString(s, "_"); s == "" {
		return "resume"
	}
	return s
}

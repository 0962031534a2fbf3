package http

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"resume-builder/internal/auth"
	"resume-builder/internal/domain"
	"resume-builder/internal/pagination"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Resumes interface {
	Create(ctx context.Context, userID string, in usecase.ResumeInput) (*domain.Resume, error)
	Get(ctx context.Context, userID, id string) (*domain.Resume, error)
	List(ctx context.Context, callerID, owner string) ([]*domain.Resume, error)
	Update(ctx context.Context, userID, id string, in usecase.ResumeInput) (*domain.Resume, error)
	Delete(ctx context.Context, userID, id string) error
	Ping(ctx context.Context) error
}

type Previews interface {
	Pages(ctx context.Context, resumeID string) (*pagination.Result, error)
	Preview(ctx context.Context, resumeID string, w io.Writer) (*pagination.Result, error)
}

type Exports interface {
	ExportPDF(ctx context.Context, resumeID string) (*usecase.Artifact, error)
	Start(resumeID, userID string) *domain.ExportJob
	Job(userID string, id uuid.UUID) (*domain.ExportJob, error)
}

type TemplateLister interface {
	List() []templates.Info
}

type Summarizer interface {
	GenerateSummary(ctx context.Context, req ai.SummaryRequest) (string, error)
}

// Deps are the services behind the HTTP API. SignIn may be nil when no
// identity provider is configured.
type Deps struct {
	Resumes   Resumes
	Previews  Previews
	Exports   Exports
	Templates TemplateLister
	Summaries Summarizer
	Tokens    *auth.Issuer
	SignIn    auth.IDTokenVerifier
}

type Handler struct {
	Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{Deps: d}
}

func (h *Handler) ListResumes(c *fiber.Ctx) error {
	list, err := h.Resumes.List(c.UserContext(), auth.UserID(c), c.Query("uid"))
	if err != nil {
		return fail(c, err)
	}
	if list == nil {
		list = []*domain.Resume{}
	}
	return c.JSON(list)
}

func (h *Handler) GetResume(c *fiber.Ctx) error {
	r, err := h.Resumes.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *Handler) CreateResume(c *fiber.Ctx) error {
	var in usecase.ResumeInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid payload")
	}
	r, err := h.Resumes.Create(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	log.Info().Str("resume", r.ID).Str("user", r.UserID).Msg("resume created")
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *Handler) UpdateResume(c *fiber.Ctx) error {
	var in usecase.ResumeInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid payload")
	}
	r, err := h.Resumes.Update(c.UserContext(), auth.UserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(r)
}

func (h *Handler) DeleteResume(c *fiber.Ctx) error {
	if err := h.Resumes.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Resume deleted"})
}

// owned loads the resume named by :id and fails unless the caller owns it.
func (h *Handler) owned(c *fiber.Ctx) (*domain.Resume, error) {
	return h.Resumes.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
}

func (h *Handler) Pages(c *fiber.Ctx) error {
	r, err := h.owned(c)
	if err != nil {
		return fail(c, err)
	}
	res, err := h.Previews.Pages(c.UserContext(), r.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	r, err := h.owned(c)
	if err != nil {
		return fail(c, err)
	}
	var b strings.Builder
	if _, err := h.Previews.Preview(c.UserContext(), r.ID, &b); err != nil {
		return fail(c, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(b.String())
}

func (h *Handler) PDF(c *fiber.Ctx) error {
	r, err := h.owned(c)
	if err != nil {
		return fail(c, err)
	}
	art, err := h.Exports.ExportPDF(c.UserContext(), r.ID)
	if err != nil {
		return fail(c, err)
	}
	c.Attachment(filename(r.Title))
	c.Type("pdf")
	return c.Send(art.PDF)
}

func (h *Handler) StartExport(c *fiber.Ctx) error {
	r, err := h.owned(c)
	if err != nil {
		return fail(c, err)
	}
	job := h.Exports.Start(r.ID, r.UserID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"jobId": job.ID.String(), "status": "started"})
}

func (h *Handler) job(c *fiber.Ctx) (*domain.ExportJob, error) {
	id, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return nil, usecase.ErrJobNotFound
	}
	return h.Exports.Job(auth.UserID(c), id)
}

func (h *Handler) GetExport(c *fiber.Ctx) error {
	job, err := h.job(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(job)
}

func (h *Handler) DownloadExport(c *fiber.Ctx) error {
	job, err := h.job(c)
	if err != nil {
		return fail(c, err)
	}
	path, _ := job.Metadata["generated_pdf"].(string)
	if job.Status != domain.ExportCompleted || path == "" {
		return errorJSON(c, fiber.StatusConflict, "export is not ready")
	}
	c.Type("pdf")
	return c.Download(path, "resume.pdf")
}

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(h.Templates.List())
}

func (h *Handler) GenerateSummary(c *fiber.Ctx) error {
	var req ai.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields: jobTitle, experience, and skills.")
	}
	summary, err := h.Summaries.GenerateSummary(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidRequest) {
			return fail(c, err)
		}
		log.Error().Err(err).Msg("summary generation failed")
		return errorJSON(c, fiber.StatusInternalServerError, "summary generation failed")
	}
	return c.JSON(fiber.Map{"summary": summary})
}

type sessionReq struct {
	IDToken string `json:"idToken"`
}

// CreateSession exchanges an identity provider token for a session token.
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	if h.SignIn == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, auth.ErrSignInUnavailable.Error())
	}
	var req sessionReq
	if err := c.BodyParser(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, fiber.StatusBadRequest, "idToken is required")
	}
	id, err := h.SignIn.VerifyIDToken(c.UserContext(), req.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to verify sign-in token")
		return errorJSON(c, fiber.StatusUnauthorized, auth.ErrInvalidToken.Error())
	}
	tok, err := h.Tokens.Generate(id.UID, id.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"token": tok, "userId": id.UID})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": "resume-builder"})
}

func (h *Handler) Ready(c *fiber.Ctx) error {
	if err := h.Resumes.Ping(c.UserContext()); err != nil {
		log.Warn().Err(err).Msg("store not ready")
		return errorJSON(c, fiber.StatusServiceUnavailable, "store unavailable")
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func filename(title string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(title), "_"), "_.")
	if name == "" {
		name = "resume"
	}
	return name + ".pdf"
}

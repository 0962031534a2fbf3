package http

import (
	"strings"
	"time"

	"resume-builder/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type RouterConfig struct {
	AllowedOrigins []string
	RateLimitRPS   int
}

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handler, cfg RouterConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resume-builder",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          2 * time.Minute,
		IdleTimeout:           60 * time.Second,
		BodyLimit:             8 << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return errorJSON(c, code, err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(requestLogger())
	origins := strings.Join(cfg.AllowedOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Authorization,Content-Type",
		ExposeHeaders:    "Content-Length,Content-Disposition",
		AllowCredentials: origins != "*",
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)

	api := app.Group("/api")
	api.Post("/auth/session", h.CreateSession)
	api.Get("/templates", h.ListTemplates)

	secured := api.Group("", auth.Middleware(h.Tokens))
	secured.Get("/resumes", h.ListResumes)
	secured.Post("/resumes", h.CreateResume)
	secured.Get("/resumes/:id", h.GetResume)
	secured.Put("/resumes/:id", h.UpdateResume)
	secured.Delete("/resumes/:id", h.DeleteResume)

	secured.Get("/resumes/:id/pages", h.Pages)
	secured.Get("/resumes/:id/preview", h.Preview)
	secured.Get("/resumes/:id/pdf", h.PDF)
	secured.Post("/resumes/:id/exports", h.StartExport)
	secured.Get("/exports/:jobId", h.GetExport)
	secured.Get("/exports/:jobId/pdf", h.DownloadExport)

	limiter := NewRateLimiter(cfg.RateLimitRPS)
	secured.Post("/ai/generate-summary", limiter.Limit(), h.GenerateSummary)

	return app
}

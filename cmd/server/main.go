package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/auth"
	"resume-builder/internal/config"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/pagination"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	infra "resume-builder/pkg/infrastructure"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if !cfg.IsDevelopment() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting resume-builder")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	reg, err := openTemplates(cfg.TemplateDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	rendering, err := infra.NewRendering(context.Background(), infra.RenderingConfig{
		MeasureMode: cfg.MeasureMode,
		ExportMode:  cfg.ExportMode,
		ChromePath:  cfg.ChromePath,
		PageSize:    pagination.PageSizeA4,
		Export:      true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start rendering")
	}
	defer rendering.Close()

	previews := usecase.NewPreviewService(store, reg, rendering.NewHost, pagination.DefaultOptions(), cfg.Frame)
	defer previews.Close()
	resumes := usecase.NewResumeService(store, previews)
	exports := usecase.NewExportService(previews, rendering.Exporter, cfg.ArtifactDir)

	go func() {
		if err := reg.Watch(ctx, previews.InvalidateAll); err != nil {
			log.Error().Err(err).Msg("template watcher stopped")
		}
	}()

	janitor := usecase.NewJanitor(previews, exports, cfg.SessionIdle, cfg.ArtifactTTL)
	if err := janitor.Start("@every 5m"); err != nil {
		log.Fatal().Err(err).Msg("failed to start janitor")
	}

	var signIn auth.IDTokenVerifier
	if cfg.FirebaseProjectID != "" {
		v, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Firebase auth")
		}
		signIn = v
	} else {
		log.Warn().Msg("FIREBASE_PROJECT_ID not set, sign-in exchange disabled")
	}

	h := httpadapter.NewHandler(httpadapter.Deps{
		Resumes:   resumes,
		Previews:  previews,
		Exports:   exports,
		Templates: reg,
		Summaries: ai.NewClient(cfg.AIServiceURL),
		Tokens:    auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		SignIn:    signIn,
	})
	app := httpadapter.NewApp(h, httpadapter.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("resume-builder server running")

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	<-janitor.Stop().Done()

	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	exports.Wait(waitCtx)
	log.Info().Msg("server stopped")
}

func openTemplates(dir string) (*templates.Registry, error) {
	if dir == "" {
		return templates.New()
	}
	return templates.NewFromDir(dir)
}

// openStore connects the configured resume store and returns its closer.
func openStore(ctx context.Context, cfg *config.Config) (usecase.ResumeRepo, func()) {
	switch cfg.Store {
	case "mongo":
		client, err := infra.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		r, err := repo.NewMongoRepo(ctx, client, cfg.MongoDatabase)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare mongo collection")
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("mongo connected")
		return r, func() { _ = client.Disconnect(context.Background()) }

	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create sqlite directory")
		}
		db, err := infra.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite")
		}
		r, err := repo.NewSQLiteRepo(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to migrate sqlite")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite opened")
		return r, func() { _ = db.Close() }

	default:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := migration.RunMigrations(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("database connected")
		return repo.NewPostgresRepo(pool), pool.Close
	}
}

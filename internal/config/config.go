package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port           string
	Env            string // development, production
	AllowedOrigins []string
	RateLimitRPS   int

	// Storage
	Store         string // postgres, mongo, sqlite
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string

	// Rendering
	MeasureMode string // chrome, estimate
	ChromePath  string
	ExportMode  string // raster, print
	TemplateDir string
	Frame       time.Duration
	SessionIdle time.Duration

	// Artifacts
	ArtifactDir string
	ArtifactTTL time.Duration

	// AI
	AIServiceURL string

	// Auth
	FirebaseProjectID string
	JWTSecret         string
	JWTIssuer         string
	JWTTTL            time.Duration
}

const devSecret = "dev-secret-change-me"

// Load reads the environment, after loading .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "5000"),
		Env:               getEnv("ENV", "development"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 5),
		Store:             strings.ToLower(getEnv("STORE", "postgres")),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "resumeDB"),
		SQLitePath:        getEnv("SQLITE_PATH", "resume-data/resumes.db"),
		MeasureMode:       strings.ToLower(getEnv("MEASURE_MODE", "chrome")),
		ChromePath:        getEnv("CHROME_PATH", ""),
		ExportMode:        strings.ToLower(getEnv("EXPORT_MODE", "raster")),
		TemplateDir:       getEnv("TEMPLATE_DIR", ""),
		Frame:             time.Duration(getEnvInt("FRAME_MS", 16)) * time.Millisecond,
		SessionIdle:       time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 15)) * time.Minute,
		ArtifactDir:       getEnv("ARTIFACT_DIR", "resume-data/generated"),
		ArtifactTTL:       time.Duration(getEnvInt("ARTIFACT_TTL_HOURS", 24)) * time.Hour,
		AIServiceURL:      getEnv("AI_SERVICE_URL", "http://ai-service:8000"),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		JWTSecret:         getEnv("JWT_SECRET", devSecret),
		JWTIssuer:         getEnv("JWT_ISSUER", "resume-builder"),
		JWTTTL:            time.Duration(getEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func (c *Config) validate() error {
	switch c.Store {
	case "postgres", "mongo", "sqlite":
	default:
		return fmt.Errorf("STORE must be postgres, mongo or sqlite, got %q", c.Store)
	}
	switch c.MeasureMode {
	case "chrome", "estimate":
	default:
		return fmt.Errorf("MEASURE_MODE must be chrome or estimate, got %q", c.MeasureMode)
	}
	switch c.ExportMode {
	case "raster", "print":
	default:
		return fmt.Errorf("EXPORT_MODE must be raster or print, got %q", c.ExportMode)
	}
	if c.Frame <= 0 {
		return fmt.Errorf("FRAME_MS must be positive")
	}
	if !c.IsDevelopment() && c.JWTSecret == devSecret {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

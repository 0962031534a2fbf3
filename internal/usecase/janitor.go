package usecase

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Janitor periodically closes idle preview sessions and prunes old exports.
type Janitor struct {
	previews    *PreviewService
	exports     *ExportService
	idle        time.Duration
	artifactTTL time.Duration
	cron        *cron.Cron
}

func NewJanitor(p *PreviewService, e *ExportService, idle, artifactTTL time.Duration) *Janitor {
	return &Janitor{previews: p, exports: e, idle: idle, artifactTTL: artifactTTL, cron: cron.New()}
}

// Start schedules the sweep using a cron spec such as "@every 5m".
func (j *Janitor) Start(spec string) error {
	if _, err := j.cron.AddFunc(spec, j.RunOnce); err != nil {
		return err
	}
	j.cron.Start()
	log.Info().Str("schedule", spec).Msg("janitor: started")
	return nil
}

// RunOnce performs one sweep.
func (j *Janitor) RunOnce() {
	if j.previews != nil {
		if n := j.previews.EvictIdle(j.idle); n > 0 {
			log.Info().Int("sessions", n).Msg("janitor: closed idle preview sessions")
		}
	}
	if j.exports != nil {
		n, err := j.exports.Prune(j.artifactTTL)
		if err != nil {
			log.Error().Err(err).Msg("janitor: pruning artifacts failed")
		} else if n > 0 {
			log.Info().Int("files", n).Msg("janitor: removed old artifacts")
		}
	}
}

// Stop stops scheduling and returns a context done when a running sweep ends.
func (j *Janitor) Stop() context.Context {
	return j.cron.Stop()
}

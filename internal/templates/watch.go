package templates

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// reloadDelay lets editors finish writing a file before it is parsed.
const reloadDelay = 250 * time.Millisecond

// Watch reloads the registry whenever a template or stylesheet in its
// directory changes and then calls onReload. It blocks until ctx is done.
// The embedded set cannot change, so Watch on it returns immediately.
func (r *Registry) Watch(ctx context.Context, onReload func()) error {
	if r.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(r.dir); err != nil {
		return err
	}
	log.Info().Str("dir", r.dir).Msg("templates: watching for changes")

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()
	reload := func() {
		if err := r.Reload(); err != nil {
			log.Error().Err(err).Str("dir", r.dir).Msg("templates: reload failed, keeping previous set")
			return
		}
		log.Info().Int("templates", len(r.List())).Msg("templates: reloaded")
		if onReload != nil {
			onReload()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				reload()
				continue
			}
			log.Warn().Err(err).Msg("templates: watcher error")
		}
	}
}

func relevant(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Remove) && !e.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(e.Name) {
	case ".tmpl", ".css":
		return true
	}
	return false
}

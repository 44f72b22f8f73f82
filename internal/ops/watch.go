package ops

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hpungsan/lexicon/internal/errors"
)

// pollInterval is used when fsnotify is unavailable.
const pollInterval = 500 * time.Millisecond

// Watch builds once, then rebuilds the artifact every time the source file
// changes, until ctx is cancelled. Failed rebuilds are logged and leave the
// previous artifact in place.
func Watch(ctx context.Context, input BuildInput, logger *slog.Logger) error {
	return watch(ctx, input, logger, nil)
}

// watch is Watch with a hook called after every build attempt.
func watch(ctx context.Context, input BuildInput, logger *slog.Logger, notify func(*BuildOutput, error)) error {
	if input.Source == "" {
		return errors.NewInvalidRequest("watch requires a source file")
	}
	if err := ValidateSourcePath(input.Source); err != nil {
		return err
	}

	rebuild := func() {
		out, err := Build(ctx, input)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("rebuild failed", "source", input.Source, "error", err)
			}
		} else {
			logger.Info("artifact built", "source", out.Source, "output", out.Output, "terms", out.Terms, "bytes", out.Bytes)
		}
		if notify != nil {
			notify(out, err)
		}
	}

	rebuild()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("fsnotify unavailable, polling", "error", err)
		return watchPolling(ctx, input.Source, rebuild)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(input.Source)); err != nil {
		watcher.Close()
		logger.Warn("cannot watch source directory, polling", "error", err)
		return watchPolling(ctx, input.Source, rebuild)
	}

	baseName := filepath.Base(input.Source)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("source changed", "event", event.Op.String())
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// watchPolling rebuilds when the source modification time changes.
func watchPolling(ctx context.Context, path string, rebuild func()) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last time.Time
	if info, err := os.Stat(path); err == nil {
		last = info.ModTime()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(last) {
				continue
			}
			last = info.ModTime()
			rebuild()
		}
	}
}

// Package watch reports documents changed on disk by someone else.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bnema/inline-edit/internal/adapters/repo/markdown"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce        = 100 * time.Millisecond
	DefaultSelfWriteWindow = 500 * time.Millisecond
)

type Options struct {
	// Debounce coalesces a burst of events into one delivery.
	Debounce time.Duration
	// SelfWriteWindow drops deliveries that follow our own write this closely.
	SelfWriteWindow time.Duration
	LastSelfWrite   func() time.Time
	Logger          *slog.Logger
}

type Watcher struct {
	fs   *fsnotify.Watcher
	opts Options
}

func New(dir string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SelfWriteWindow <= 0 {
		opts.SelfWriteWindow = DefaultSelfWriteWindow
	}
	if opts.LastSelfWrite == nil {
		opts.LastSelfWrite = func() time.Time { return time.Time{} }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("watch directory %q: %w", dir, err)
	}

	return &Watcher{fs: fs, opts: opts}, nil
}

// Run delivers the ids of changed documents to onChange until ctx is done or
// the watcher is closed. Ids are sorted and unique within one delivery.
func (w *Watcher) Run(ctx context.Context, onChange func([]domain.DocumentID)) error {
	changed := map[domain.DocumentID]struct{}{}
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			id, isDocument := markdown.IDFromFileName(ev.Name)
			if !isDocument || !relevant(ev) {
				continue
			}
			if len(changed) == 0 {
				timer.Reset(w.opts.Debounce)
			}
			changed[id] = struct{}{}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			ids := make([]domain.DocumentID, 0, len(changed))
			for id := range changed {
				ids = append(ids, id)
			}
			clear(changed)

			if time.Since(w.opts.LastSelfWrite()) < w.opts.SelfWriteWindow {
				w.opts.Logger.Debug("ignoring own write", "documents", len(ids))
				continue
			}

			slices.Sort(ids)
			onChange(ids)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func relevant(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

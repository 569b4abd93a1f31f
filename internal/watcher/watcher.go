package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/john/chatter/internal/config"
)

// Watcher reloads the config file when it changes on disk and hands the
// parsed result to its callback. A reload that fails to parse or validate
// is logged and ignored; the running configuration stays in effect.
type Watcher struct {
	path     string
	onChange func(*config.Config)
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the given config file.
func New(path string, onChange func(*config.Config)) (*Watcher, error) {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		watcher:  fileWatcher,
	}, nil
}

// Start watches until the context is cancelled. The parent directory is
// watched rather than the file itself: editors and config management tools
// typically replace the file, which would silently detach a file watch.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}
	log.Printf("Watching config file: %s", w.path)

	for {
		select {
		case <-ctx.Done():
			log.Println("Config watcher stopped")
			return ctx.Err()
		case event := <-w.watcher.Events:
			w.handleEvent(event)
		case err := <-w.watcher.Errors:
			if err != nil {
				log.Printf("Config watcher error: %v", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	cfg, err := config.Load(w.path)
	if err != nil {
		log.Printf("Ignoring config change: %v", err)
		return
	}
	log.Println("Configuration reloaded")
	w.onChange(cfg)
}

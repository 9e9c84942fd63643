// Package watcher triggers rescans when theme files change, debouncing the
// bursts editors and build tools produce.
package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a theme directory tree and invokes a trigger after file
// changes settle for the debounce window.
type Watcher struct {
	root     string
	debounce time.Duration
	trigger  func()
}

// New creates a watcher rooted at the theme directory.
func New(root string, debounce time.Duration, trigger func()) *Watcher {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{root: root, debounce: debounce, trigger: trigger}
}

// Start begins watching in a background goroutine until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := w.addRecursive(fsw, w.root); err != nil {
		fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()
		log.Println("[watcher] started")

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				log.Println("[watcher] stopped")
				return

			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !w.relevant(ev) {
					continue
				}
				// New directories must be added before files inside them
				// produce events.
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = w.addRecursive(fsw, ev.Name)
					}
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
					timerC = timer.C
				} else {
					timer.Reset(w.debounce)
				}

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Printf("[watcher] error: %v", err)

			case <-timerC:
				timer = nil
				timerC = nil
				w.trigger()
			}
		}
	}()

	return nil
}

// relevant filters events down to files that can affect a scan: theme
// sources and the settings documents.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
		return false
	}
	name := ev.Name
	return strings.HasSuffix(name, ".liquid") ||
		strings.HasSuffix(name, ".css") ||
		strings.HasSuffix(name, ".json") ||
		isDirLike(name)
}

// isDirLike guesses directory events by the absence of an extension; the
// event itself does not say, and a removed path cannot be stat'ed.
func isDirLike(name string) bool {
	return filepath.Ext(name) == ""
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree: watch what we can
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if base == "node_modules" || strings.HasPrefix(base, ".") && path != root {
			return fs.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			log.Printf("[watcher] cannot watch %s: %v", path, err)
		}
		return nil
	})
}

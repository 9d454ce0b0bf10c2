package dataset

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a data file into a Holder whenever the file changes.
type Watcher struct {
	path     string
	holder   *Holder
	load     func(string) (*Dataset, error)
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches path and reloads it with LoadFile.
func NewWatcher(path string, holder *Holder) *Watcher {
	return &Watcher{
		path:     path,
		holder:   holder,
		load:     LoadFile,
		debounce: 250 * time.Millisecond,
	}
}

// Start watches the file's directory (editors often replace files) until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(w.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				w.stopTimer()
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watcher error: %v", err)
			}
		}
	}()
	log.Printf("👀 Watching %s for changes", w.path)
	return nil
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	ds, err := w.load(w.path)
	if err != nil {
		log.Printf("⚠️ Reload of %s failed, keeping previous snapshot: %v", w.path, err)
		return
	}
	prev := w.holder.Swap(ds)
	if prev != nil {
		log.Printf("🔄 Reloaded %s: %d → %d cases", w.path, prev.Len(), ds.Len())
	}
}

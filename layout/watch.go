package layout

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Watcher reports changes to the directories of a sensor.  Bursts of events
// are coalesced so that a tool writing hundreds of files triggers a handful of
// callbacks.
type Watcher struct {
	fsw *fsnotify.Watcher
	lim *rate.Limiter

	root    string
	dirs    []string
	watched map[string]bool
}

// NewWatcher watches the raw directory and the directories of kinds.  A
// directory that does not exist yet is stood in for by its nearest existing
// parent below the sensor directory, and is watched itself once created.
// At most one change is reported per interval.
func (l Layout) NewWatcher(sensor string, kinds []Kind, interval time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}
	w := &Watcher{
		fsw:     fsw,
		lim:     rate.NewLimiter(rate.Every(interval), 1),
		root:    filepath.Join(l.Base, sensor),
		watched: map[string]bool{}}
	for _, k := range append([]Kind{Raw}, kinds...) {
		w.dirs = append(w.dirs, l.Dir(sensor, k))
	}
	if err := w.sync(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// sync watches each wanted directory, or its nearest existing parent within
// the sensor directory
func (w *Watcher) sync() error {
	for _, dir := range w.dirs {
		d := dir
		for {
			if _, err := os.Stat(d); err == nil {
				break
			}
			if d == w.root || len(d) <= len(w.root) {
				d = ""
				break
			}
			d = filepath.Dir(d)
		}
		if d == "" || w.watched[d] {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			return errors.Wrapf(err, "watching %s", d)
		}
		w.watched[d] = true
	}
	return nil
}

// Run calls onChange after files are created, written, removed or renamed,
// until ctx is done.  The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v\n", err)
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.lim.Wait(ctx); err != nil {
				return nil
			}
			w.drain()
			if err := w.sync(); err != nil {
				log.Printf("watch error: %v\n", err)
			}
			onChange()
		}
	}
}

// drain discards events queued while waiting on the limiter
func (w *Watcher) drain() {
	deadline := time.After(10 * time.Millisecond)
	for {
		select {
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
		case <-deadline:
			return
		}
	}
}

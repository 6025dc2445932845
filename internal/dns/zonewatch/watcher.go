// Package zonewatch watches the configured zone file for changes and
// signals the engine that a reload is due, without ever blocking the
// engine's own loop.
package zonewatch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/styxlabs/charon/internal/dns/common/log"
)

// debounce absorbs the burst of events a single `mv`/editor-save
// produces (write + rename + chmod) into one reload signal.
const debounce = 250 * time.Millisecond

// Watcher watches a zone file's directory and signals on reload when
// the file itself has changed. The zero value is not usable; build one
// with New.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	reload  chan struct{}
	done    chan struct{}
	logger  log.Logger
}

// New starts watching the directory containing path and returns a
// Watcher whose Poll method reports pending reloads. The directory,
// not the file, is watched so that editors that save via
// rename-over-original are still detected.
func New(path string, logger log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    filepath.Clean(path),
		watcher: fw,
		reload:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.watcher.Close()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-w.done:
			return

		case e, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Has(fsnotify.Chmod) {
				continue
			}
			pending = true
			timer.Reset(debounce)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			select {
			case w.reload <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn(map[string]any{"error": err.Error()}, "zonewatch: watcher error")
			}
		}
	}
}

// Poll reports, without blocking, whether the zone file has changed
// since the last call to Poll. The engine calls this once per loop
// iteration.
func (w *Watcher) Poll() bool {
	select {
	case <-w.reload:
		return true
	default:
		return false
	}
}

// Close stops the background watch goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	return nil
}

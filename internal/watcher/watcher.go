package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"video-library/internal/logging"
	"video-library/internal/mediatypes"
	"video-library/internal/scanner"
)

const debounceDelay = 2 * time.Second

var logger = logging.ForComponent("watcher")

// Watcher monitors the media root and triggers a quick scan shortly
// after files change. Bursts of events, a download finishing or a batch
// copy, collapse into a single scan.
type Watcher struct {
	scn      *scanner.Scanner
	mediaDir string
	fw       *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	stop  chan struct{}
}

func New(scn *scanner.Scanner, mediaDir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		scn:      scn,
		mediaDir: mediaDir,
		fw:       fw,
		stop:     make(chan struct{}),
	}, nil
}

// Start registers the media tree and begins processing events.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.mediaDir); err != nil {
		return err
	}
	go w.eventLoop()
	logger.Info("Filesystem watcher started on %s", w.mediaDir)
	return nil
}

// Stop shuts the watcher down. Pending debounced scans are dropped.
func (w *Watcher) Stop() {
	close(w.stop)
	w.fw.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return fs.SkipDir
		}
		if err := w.fw.Add(path); err != nil {
			logger.Warn("Watcher failed to add %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, ".part") {
		return
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	// New directories must join the watch set before anything lands in
	// them.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn("Watcher failed to add %s: %v", event.Name, err)
			}
			w.schedule()
			return
		}
	}

	if !mediatypes.IsVideo(base) && !mediatypes.IsSubtitle(base) {
		return
	}
	w.schedule()
}

// schedule arms the debounce timer, restarting it when already armed.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.runScan)
}

func (w *Watcher) runScan() {
	logger.Debug("Watcher triggering quick scan")
	if err := w.scn.Start(scanner.ModeQuick); err != nil {
		if errors.Is(err, scanner.ErrScanInProgress) {
			// The running scan will pick the change up, or a later
			// event will reschedule.
			logger.Debug("Watcher scan skipped: scan already in progress")
			return
		}
		logger.Warn("Watcher scan failed to start: %v", err)
	}
}

package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-library/internal/catalog"
	"video-library/internal/logging"
	"video-library/internal/mediatypes"
	"video-library/internal/metrics"
	"video-library/internal/sidecar"
	"video-library/internal/workers"
)

// ErrScanInProgress is returned when a scan is requested while another
// run is still active. Callers are expected to surface this as a
// conflict rather than queue the request.
var ErrScanInProgress = errors.New("scan already in progress")

var logger = logging.ForComponent("scanner")

// State reports whether the scanner is currently walking the media root.
type State int

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	if s == StateScanning {
		return "scanning"
	}
	return "idle"
}

const insertBatchSize = 500

// Scanner walks the media root and keeps the catalog in sync with the
// files on disk. At most one run is active at a time.
type Scanner struct {
	store      *catalog.Store
	reconciler *sidecar.Reconciler
	mediaDir   string

	mu         sync.Mutex
	state      State
	lastReport *Report
}

func New(store *catalog.Store, rec *sidecar.Reconciler, mediaDir string) *Scanner {
	return &Scanner{
		store:      store,
		reconciler: rec,
		mediaDir:   mediaDir,
	}
}

// State returns the scanner's current state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the report of the most recently finished run, or
// nil if no run has completed yet.
func (s *Scanner) LastReport() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// Scan runs a scan synchronously and returns its report. If a run is
// already active it returns ErrScanInProgress without waiting.
func (s *Scanner) Scan(ctx context.Context, mode Mode) (*Report, error) {
	if !s.tryStart() {
		metrics.ScanRejectedTotal.Inc()
		return nil, ErrScanInProgress
	}
	report := s.run(ctx, mode)
	s.finish(report)
	return report, nil
}

// Start launches a scan in the background. It returns ErrScanInProgress
// if a run is already active, otherwise it returns immediately.
func (s *Scanner) Start(mode Mode) error {
	if !s.tryStart() {
		metrics.ScanRejectedTotal.Inc()
		return ErrScanInProgress
	}
	go func() {
		report := s.run(context.Background(), mode)
		s.finish(report)
	}()
	return nil
}

func (s *Scanner) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateScanning {
		return false
	}
	s.state = StateScanning
	metrics.ScanRunning.Set(1)
	return true
}

func (s *Scanner) finish(report *Report) {
	s.mu.Lock()
	s.state = StateIdle
	s.lastReport = report
	s.mu.Unlock()
	metrics.ScanRunning.Set(0)
}

func (s *Scanner) run(ctx context.Context, mode Mode) *Report {
	report := &Report{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
	logger.Info("Scan %s started (mode=%s)", report.ID, mode)

	s.doScan(ctx, mode, report)

	report.FinishedAt = time.Now()
	elapsed := report.FinishedAt.Sub(report.StartedAt)

	metrics.ScanRunsTotal.WithLabelValues(string(mode)).Inc()
	metrics.ScanLastRunTimestamp.SetToCurrentTime()
	metrics.ScanLastRunDuration.Set(elapsed.Seconds())
	metrics.ScanFilesSeen.Add(float64(report.FilesSeen))
	metrics.ScanFilesAdded.Add(float64(report.NewRecords))
	metrics.ScanErrors.Add(float64(len(report.Errors)))

	logger.Info("Scan %s finished in %s: %d files seen, %d new, %d refreshed, %d errors",
		report.ID, elapsed.Round(time.Millisecond), report.FilesSeen, report.NewRecords, report.Refreshed, len(report.Errors))
	return report
}

func (s *Scanner) doScan(ctx context.Context, mode Mode, report *Report) {
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		report.addError(s.mediaDir, err)
		return
	}

	hideHidden := s.store.HideHiddenFiles(ctx)

	discovered, subsByDir := s.walk(report, hideHidden)
	report.FilesSeen = len(discovered)

	s.insert(report, discovered, subsByDir, mode)

	if mode == ModeFull {
		s.refreshAll(ctx, report, discovered)
	}
}

// walk collects every video file under the media root along with the
// subtitle files found in each directory. Per-path errors are recorded
// and the walk continues.
func (s *Scanner) walk(report *Report, hideHidden bool) ([]*catalog.VideoRecord, map[string][]string) {
	var discovered []*catalog.VideoRecord
	subsByDir := make(map[string][]string)

	err := filepath.WalkDir(s.mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			report.addError(path, err)
			return nil
		}
		name := d.Name()
		if hideHidden && strings.HasPrefix(name, ".") && path != s.mediaDir {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if mediatypes.IsSubtitle(name) {
			dir := filepath.Dir(path)
			subsByDir[dir] = append(subsByDir[dir], name)
			return nil
		}
		if !mediatypes.IsVideo(name) {
			return nil
		}

		rel, relErr := filepath.Rel(s.mediaDir, path)
		if relErr != nil {
			report.addError(path, relErr)
			return nil
		}
		rec := newRecord(rel)
		if s.reconciler.HasExternalSidecar(rec) {
			rec.Provenance = catalog.ProvenanceExternal
		}
		discovered = append(discovered, rec)
		return nil
	})
	if err != nil {
		report.addError(s.mediaDir, err)
	}
	return discovered, subsByDir
}

// newRecord derives the catalog identity of a file from its path
// relative to the media root. The id is stable across rescans and
// across machines with the same layout.
func newRecord(rel string) *catalog.VideoRecord {
	rel = filepath.ToSlash(rel)
	sum := sha256.Sum256([]byte(rel))

	folder := catalog.RootFolder
	if dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." {
		folder = dir
	}

	filename := filepath.Base(rel)
	display := strings.TrimSuffix(filename, filepath.Ext(filename))

	return &catalog.VideoRecord{
		ID:           hex.EncodeToString(sum[:]),
		DisplayName:  display,
		Filename:     filename,
		FolderPath:   folder,
		RelativePath: rel,
	}
}

// insert registers discovered files in batches. New records get their
// subtitle references attached immediately; in full mode subtitle
// references are refreshed for every record so renamed or removed
// subtitle files are picked up.
func (s *Scanner) insert(report *Report, discovered []*catalog.VideoRecord, subsByDir map[string][]string, mode Mode) {
	inserted := 0
	for start := 0; start < len(discovered); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(discovered) {
			end = len(discovered)
		}

		tx, err := s.store.BeginBatch()
		if err != nil {
			report.addError(s.mediaDir, err)
			break
		}
		for _, rec := range discovered[start:end] {
			isNew, err := s.store.InsertVideo(tx, rec)
			if err != nil {
				report.addError(rec.RelativePath, err)
				continue
			}
			if isNew {
				inserted++
			}
			if isNew || mode == ModeFull {
				dir := filepath.Dir(filepath.Join(s.mediaDir, filepath.FromSlash(rec.RelativePath)))
				subs := matchSubtitles(rec, subsByDir[dir])
				if err := s.store.SetSubtitles(tx, rec.ID, subs); err != nil {
					report.addError(rec.RelativePath, err)
				}
			}
		}
		if err := s.store.EndBatch(tx, nil); err != nil {
			report.addError(s.mediaDir, err)
		}
	}
	report.NewRecords = inserted
}

// refreshAll re-reads sidecar metadata and probes durations across a
// bounded worker pool. ffprobe dominates the cost so the pool is sized
// for IO bound work.
func (s *Scanner) refreshAll(ctx context.Context, report *Report, discovered []*catalog.VideoRecord) {
	type result struct {
		path string
		err  error
	}

	jobs := make(chan *catalog.VideoRecord)
	results := make(chan result, len(discovered))

	var wg sync.WaitGroup
	for i := 0; i < workers.ForIO(8); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				stored, err := s.store.GetVideo(ctx, rec.ID)
				if err == nil {
					err = s.reconciler.Refresh(ctx, stored)
				}
				results <- result{path: rec.RelativePath, err: err}
			}
		}()
	}

	for _, rec := range discovered {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			report.addError(r.path, r.err)
			continue
		}
		report.Refreshed++
	}
}

// matchSubtitles pairs subtitle files in a directory with a video by
// base name. The subtitle base must equal the video base exactly or
// extend it with a dot-separated suffix ("movie.en.srt"); a bare prefix
// is not enough, or "Movie 2.srt" would attach to "Movie.mp4". A
// language tag is taken from the trailing name component when it looks
// like one.
func matchSubtitles(rec *catalog.VideoRecord, subNames []string) []catalog.SubtitleRef {
	videoBase := strings.TrimSuffix(rec.Filename, filepath.Ext(rec.Filename))

	var refs []catalog.SubtitleRef
	for _, name := range subNames {
		subBase := strings.TrimSuffix(name, filepath.Ext(name))
		if subBase != videoBase && !strings.HasPrefix(subBase, videoBase+".") {
			continue
		}
		dir := filepath.ToSlash(filepath.Dir(rec.RelativePath))
		subPath := name
		if dir != "." {
			subPath = dir + "/" + name
		}
		refs = append(refs, catalog.SubtitleRef{
			Path:     subPath,
			Language: guessLanguage(subBase, videoBase),
			Label:    name,
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs
}

func guessLanguage(subBase, videoBase string) string {
	tag := strings.Trim(strings.TrimPrefix(subBase, videoBase), ".")
	if len(tag) < 2 || len(tag) > 3 {
		return ""
	}
	for _, r := range tag {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return tag
}

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/matviet/cdp-importer/internal/config"
	obsmetrics "github.com/matviet/cdp-importer/internal/observability/metrics"
	"github.com/matviet/cdp-importer/internal/spreadsheet"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Watcher monitors the intake directories and feeds files that have been
// quiet for the stability window to the dispatcher. fsnotify has no
// equivalent of chokidar's awaitWriteFinish, so stability is tracked here:
// every write resets the file's timer, and only a full quiet period
// without events marks it ready.
type Watcher struct {
	cfg        config.Config
	tunable    *config.ImporterConfigHolder
	log        *zap.Logger
	dispatcher *Dispatcher

	mu       sync.Mutex
	pending  map[string]*time.Timer
	released map[string]bool
	stable   chan string
	quit     chan struct{}
}

type Params struct {
	fx.In

	Cfg        config.Config
	Tunable    *config.ImporterConfigHolder
	Log        *zap.Logger
	Dispatcher *Dispatcher
}

func New(p Params) *Watcher {
	return &Watcher{
		cfg:        p.Cfg,
		tunable:    p.Tunable,
		log:        p.Log.Named("watcher"),
		dispatcher: p.Dispatcher,
		pending:    make(map[string]*time.Timer),
		released:   make(map[string]bool),
		stable:     make(chan string, 64),
		quit:       make(chan struct{}),
	}
}

// Run watches until ctx is cancelled. Files are dispatched one at a time;
// a failure in one file never stops the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.quit)

	dirs := []string{w.cfg.SMSDir(), w.cfg.OrdersDir(), w.cfg.ProcessedDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	w.reportStaleClaims()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, dir := range []string{w.cfg.SMSDir(), w.cfg.OrdersDir()} {
		if err := fsw.Add(dir); err != nil {
			return err
		}
	}

	w.log.Info("auto import started",
		zap.String("sms_dir", w.cfg.SMSDir()),
		zap.String("orders_dir", w.cfg.OrdersDir()),
	)

	// Files already sitting in the intake dirs are picked up as if they
	// had just arrived; the watcher holds no durable state across
	// restarts.
	w.scanExisting()

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.schedule(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))

		case path := <-w.stable:
			w.handleStable(ctx, path)
		}
	}
}

// schedule starts (or resets) the stability timer for a file.
func (w *Watcher) schedule(path string) {
	if ignoredName(filepath.Base(path)) {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	quiet := w.tunable.Get().StabilityWindow

	w.mu.Lock()
	defer w.mu.Unlock()

	// A file the dispatcher just renamed back raises its own Create
	// event. Reacting to it would retry the import forever; failed and
	// empty files stay in place until an operator touches them.
	if w.released[path] {
		delete(w.released, path)
		return
	}

	if timer, ok := w.pending[path]; ok {
		timer.Reset(quiet)
		return
	}
	w.log.Info("new file detected", zap.String("file", filepath.Base(path)))
	w.pending[path] = time.AfterFunc(quiet, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.stable <- path:
		case <-w.quit:
		}
	})
}

func (w *Watcher) handleStable(ctx context.Context, path string) {
	name := filepath.Base(path)

	if !acceptedExtension(path) {
		w.log.Info("skipping file with unsupported extension", zap.String("file", name))
		if pipeline, ok := w.dispatcher.pipelineFor(path); ok {
			obsmetrics.Importer().IncFileProcessed(pipeline, obsmetrics.FileStatusSkipped)
		}
		return
	}

	// Additional safety margin beyond the stability window, matching the
	// original pipeline's fixed pre-dispatch wait.
	grace := w.tunable.Get().DispatchGrace
	if grace > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(grace):
		}
	}

	w.dispatcher.Dispatch(ctx, path)

	// Anything still sitting at the original path was released, not
	// archived; ignore the rename-back event it is about to raise.
	if _, err := os.Stat(path); err == nil {
		w.mu.Lock()
		w.released[path] = true
		w.mu.Unlock()
	}
}

func (w *Watcher) scanExisting() {
	for _, dir := range []string{w.cfg.SMSDir(), w.cfg.OrdersDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			w.log.Warn("cannot scan intake directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			w.schedule(filepath.Join(dir, entry.Name()))
		}
	}
}

// reportStaleClaims surfaces files left mid-import by a crashed process.
// They are not re-processed automatically; an operator decides whether
// rows already landed.
func (w *Watcher) reportStaleClaims() {
	for _, dir := range []string{w.cfg.SMSDir(), w.cfg.OrdersDir()} {
		matches, err := filepath.Glob(filepath.Join(dir, claimDirName, "*"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			w.log.Warn("found file claimed by a previous run, manual intervention required",
				zap.String("file", filepath.Base(m)),
			)
		}
	}
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// ignoredName filters dotfiles (which also covers the claim directory)
// and spreadsheet editor lock files (~$...).
func ignoredName(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "~$")
}

func acceptedExtension(path string) bool {
	return spreadsheet.AcceptedExtensions[strings.ToLower(filepath.Ext(path))]
}

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/matviet/cdp-importer/internal/clock"
	"github.com/matviet/cdp-importer/internal/config"
	importrundomain "github.com/matviet/cdp-importer/internal/importrun/domain"
	"github.com/matviet/cdp-importer/internal/lock"
	messagedomain "github.com/matviet/cdp-importer/internal/message/domain"
	obsmetrics "github.com/matviet/cdp-importer/internal/observability/metrics"
	orderdomain "github.com/matviet/cdp-importer/internal/order/domain"
	"github.com/matviet/cdp-importer/internal/refresh"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// claimDirName holds in-flight files. The rename into it is the
	// durable claim: a crash mid-import leaves the file there instead of
	// silently re-processing or losing it. The original name is kept so
	// format detection and source_file records see the real file name.
	claimDirName = ".importing"

	lockTTL = 30 * time.Minute

	PipelineSMS    = "sms"
	PipelineOrders = "orders"
)

// Dispatcher routes one stable file to its pipeline, records the run,
// triggers the cache refresh and archives the file on success.
type Dispatcher struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	genID    *snowflake.Node
	clock    clock.Clock
	locker   *lock.Locker
	runs     importrundomain.Repository
	messages messagedomain.Service
	orders   orderdomain.Service
	refresh  *refresh.Orchestrator
}

type DispatcherParams struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	GenID    *snowflake.Node
	Clock    clock.Clock
	Locker   *lock.Locker `optional:"true"`
	Runs     importrundomain.Repository
	Messages messagedomain.Service
	Orders   orderdomain.Service
	Refresh  *refresh.Orchestrator
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	return &Dispatcher{
		cfg:      p.Cfg,
		log:      p.Log.Named("dispatcher"),
		db:       p.DB,
		genID:    p.GenID,
		clock:    p.Clock,
		locker:   p.Locker,
		runs:     p.Runs,
		messages: p.Messages,
		orders:   p.Orders,
		refresh:  p.Refresh,
	}
}

// summary is the pipeline-independent view of an import result.
type summary struct {
	headerRow     int
	parsed        int
	rejected      int
	loaded        int
	batchErrors   int
	rejectReasons map[string]int
}

// Dispatch processes one file end to end. It never panics outward: any
// failure is logged and the file is left in place for manual inspection.
func (d *Dispatcher) Dispatch(ctx context.Context, path string) {
	name := filepath.Base(path)
	log := d.log.With(zap.String("file", name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing file",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	pipeline, ok := d.pipelineFor(path)
	if !ok {
		log.Warn("file is not inside a watched intake directory")
		return
	}

	token, acquired, err := d.locker.TryLock(ctx, "import:"+name, lockTTL)
	if err != nil {
		log.Warn("import lock unavailable, proceeding unlocked", zap.Error(err))
	} else if !acquired {
		log.Info("file is being imported by another process")
		return
	}
	defer func() {
		_ = d.locker.Release(ctx, "import:"+name, token)
	}()

	claimed := claimPath(path)
	if err := os.MkdirAll(filepath.Dir(claimed), 0o755); err != nil {
		log.Error("cannot create claim directory", zap.Error(err))
		return
	}
	if err := os.Rename(path, claimed); err != nil {
		log.Warn("cannot claim file", zap.Error(err))
		return
	}

	start := d.clock.Now()
	run := &importrundomain.ImportRun{
		ID:         d.genID.Generate(),
		Pipeline:   pipeline,
		SourceFile: name,
		Status:     importrundomain.StatusRunning,
		StartedAt:  start,
	}
	if err := d.runs.Insert(ctx, d.db, run); err != nil {
		log.Warn("cannot record import run", zap.Error(err))
	}

	sum, err := d.runPipeline(ctx, pipeline, claimed)
	d.finish(ctx, log, run, path, claimed, sum, err)

	obsmetrics.Importer().ObserveImportDuration(pipeline, time.Since(start))
}

// claimPath is the in-flight location of a file: a hidden subdirectory
// of its intake dir, under the original name.
func claimPath(path string) string {
	return filepath.Join(filepath.Dir(path), claimDirName, filepath.Base(path))
}

func (d *Dispatcher) pipelineFor(path string) (string, bool) {
	switch filepath.Dir(path) {
	case d.cfg.SMSDir():
		return PipelineSMS, true
	case d.cfg.OrdersDir():
		return PipelineOrders, true
	default:
		return "", false
	}
}

func (d *Dispatcher) runPipeline(ctx context.Context, pipeline, claimed string) (summary, error) {
	switch pipeline {
	case PipelineSMS:
		res, err := d.messages.ImportFile(ctx, claimed)
		return summary{
			headerRow:     res.HeaderRow,
			parsed:        res.Parsed,
			rejected:      res.Rejected,
			loaded:        res.Loaded,
			batchErrors:   res.BatchErrors,
			rejectReasons: res.RejectReasons,
		}, err
	default:
		res, err := d.orders.ImportFile(ctx, claimed)
		return summary{
			headerRow:     res.HeaderRow,
			parsed:        res.Parsed,
			rejected:      res.Rejected,
			loaded:        res.Loaded,
			batchErrors:   res.BatchErrors,
			rejectReasons: res.RejectReasons,
		}, err
	}
}

func (d *Dispatcher) finish(ctx context.Context, log *zap.Logger, run *importrundomain.ImportRun, path, claimed string, sum summary, importErr error) {
	metrics := obsmetrics.Importer()

	run.ParsedCount = sum.parsed
	run.RejectedCount = sum.rejected
	run.LoadedCount = sum.loaded
	run.BatchErrors = sum.batchErrors
	if sum.headerRow >= 0 {
		headerRow := sum.headerRow
		run.HeaderRow = &headerRow
	}
	if len(sum.rejectReasons) > 0 {
		reasons := make(datatypes.JSONMap, len(sum.rejectReasons))
		for reason, n := range sum.rejectReasons {
			reasons[reason] = n
		}
		run.RejectReasons = reasons
	}

	switch {
	case importErr != nil:
		msg := importErr.Error()
		run.Status = importrundomain.StatusFailed
		run.Error = &msg
		log.Error("error processing file", zap.Error(importErr))
		d.release(log, path, claimed)
		metrics.IncFileProcessed(run.Pipeline, obsmetrics.FileStatusFailed)

	case sum.loaded == 0:
		run.Status = importrundomain.StatusEmpty
		log.Warn("no records imported, file left in place")
		d.release(log, path, claimed)
		metrics.IncFileProcessed(run.Pipeline, obsmetrics.FileStatusEmpty)

	default:
		run.Status = importrundomain.StatusImported
		// Refresh before archiving; a refresh failure means stale
		// aggregates until the next run, never an unarchived file.
		d.refresh.RefreshAll(ctx)
		d.archive(log, path, claimed)
		metrics.IncFileProcessed(run.Pipeline, obsmetrics.FileStatusImported)
	}

	finished := d.clock.Now()
	run.FinishedAt = &finished
	if err := d.runs.Update(ctx, d.db, run); err != nil {
		log.Warn("cannot update import run", zap.Error(err))
	}
}

// release gives a claimed file its original name back.
func (d *Dispatcher) release(log *zap.Logger, path, claimed string) {
	if err := os.Rename(claimed, path); err != nil {
		log.Error("cannot release claimed file", zap.Error(err))
	}
}

// archive moves a fully imported file into the processed folder with a
// timestamp prefix to avoid collisions.
func (d *Dispatcher) archive(log *zap.Logger, path, claimed string) {
	name := filepath.Base(path)
	stamp := d.clock.Now().Format("2006-01-02T15-04-05")
	dest := filepath.Join(d.cfg.ProcessedDir(), stamp+"_"+name)

	if err := os.Rename(claimed, dest); err != nil {
		log.Error("cannot archive file", zap.Error(err))
		return
	}
	log.Info("file archived", zap.String("processed", filepath.Base(dest)))
}

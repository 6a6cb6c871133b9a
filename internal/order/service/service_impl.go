package service

import (
	"context"
	"path/filepath"

	"github.com/matviet/cdp-importer/internal/config"
	obsmetrics "github.com/matviet/cdp-importer/internal/observability/metrics"
	"github.com/matviet/cdp-importer/internal/order/domain"
	"github.com/matviet/cdp-importer/internal/order/parser"
	refmapdomain "github.com/matviet/cdp-importer/internal/refmap/domain"
	"github.com/matviet/cdp-importer/internal/spreadsheet"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pipeline = "orders"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	RefMaps refmapdomain.Repository
	Tunable *config.ImporterConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	refMaps refmapdomain.Repository
	tunable *config.ImporterConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		repo:    p.Repo,
		refMaps: p.RefMaps,
		tunable: p.Tunable,
	}
}

// ImportFile runs one sales export through parse, enrich and load.
func (s *Service) ImportFile(ctx context.Context, path string) (domain.ImportResult, error) {
	sourceFile := filepath.Base(path)
	log := s.log.With(zap.String("file", sourceFile))
	log.Info("processing orders file")

	grid, err := spreadsheet.LoadGrid(path)
	if err != nil {
		return domain.ImportResult{SourceFile: sourceFile}, err
	}

	cfg := s.tunable.Get()
	parsed := parser.Parse(grid, cfg.HeaderScanRows)

	result := domain.ImportResult{
		SourceFile:    sourceFile,
		HeaderRow:     -1,
		Parsed:        len(parsed.Orders),
		Rejected:      len(parsed.Rejects),
		RejectReasons: parsed.TallyRejects(),
	}

	if !parsed.HeaderFound {
		log.Warn("could not find order header row")
		return result, nil
	}
	result.HeaderRow = parsed.HeaderRow
	log.Info("found headers", zap.Int("row", parsed.HeaderRow+1))

	if len(parsed.MissingCols) > 0 {
		log.Warn("column map incomplete",
			zap.Strings("missing", parsed.MissingCols),
		)
		return result, nil
	}

	metrics := obsmetrics.Importer()
	metrics.AddRowsParsed(pipeline, result.Parsed)
	for reason, n := range result.RejectReasons {
		metrics.AddRowsRejected(pipeline, reason, n)
	}

	log.Info("parsed orders",
		zap.Int("valid", result.Parsed),
		zap.Int("rejected", result.Rejected),
		zap.Any("reject_reasons", result.RejectReasons),
	)
	if result.Parsed == 0 {
		log.Warn("no valid orders found")
		return result, nil
	}

	log.Info("loading customer and store mappings")
	snap, err := s.refMaps.OrderSnapshot(ctx, s.db)
	if err != nil {
		return result, err
	}
	log.Info("mappings loaded",
		zap.Int("customers", len(snap.CustomerByCode)),
		zap.Int("stores", len(snap.StoreByCode)),
	)

	enrich(parsed.Orders, snap)

	processed, batchErrs := s.repo.BulkUpsert(ctx, s.db, parsed.Orders, cfg.OrderBatchSize)
	for _, batchErr := range batchErrs {
		metrics.IncBatchError(pipeline)
		log.Error("batch upsert failed", zap.Error(batchErr))
	}
	result.Loaded = processed
	result.BatchErrors = len(batchErrs)
	metrics.AddRowsLoaded(pipeline, processed)

	log.Info("orders processed",
		zap.Int("loaded", processed),
		zap.Int("total", result.Parsed),
	)
	return result, nil
}

// enrich resolves customer and store identity by exact code match.
// Unresolved codes leave the id nil rather than failing the row.
func enrich(orders []domain.Order, snap refmapdomain.OrderSnapshot) {
	for i := range orders {
		o := &orders[i]
		if o.CustomerCode != nil {
			if id, ok := snap.CustomerByCode[*o.CustomerCode]; ok {
				customerID := id
				o.CustomerID = &customerID
			}
		}
		if o.StoreCode != nil {
			if id, ok := snap.StoreByCode[*o.StoreCode]; ok {
				storeID := id
				o.StoreID = &storeID
			}
		}
	}
}

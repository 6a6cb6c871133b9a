package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matviet/cdp-importer/internal/config"
	"github.com/matviet/cdp-importer/internal/message/domain"
	"github.com/matviet/cdp-importer/internal/message/parser"
	obsmetrics "github.com/matviet/cdp-importer/internal/observability/metrics"
	refmapdomain "github.com/matviet/cdp-importer/internal/refmap/domain"
	"github.com/matviet/cdp-importer/internal/spreadsheet"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pipeline = "sms"

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
		log:     p.Log.Named("message.service"),
		repo:    p.Repo,
		refMaps: p.RefMaps,
		tunable: p.Tunable,
	}
}

// ImportFile runs one eSMS report through parse, enrich and load. A file
// with no usable rows yields Loaded == 0, not an error; the caller decides
// what to do with the source file.
func (s *Service) ImportFile(ctx context.Context, path string) (domain.ImportResult, error) {
	sourceFile := filepath.Base(path)
	log := s.log.With(zap.String("file", sourceFile))
	log.Info("processing eSMS file")

	grid, err := spreadsheet.LoadGrid(path)
	if err != nil {
		return domain.ImportResult{SourceFile: sourceFile}, err
	}

	cfg := s.tunable.Get()
	parsed := parser.Parse(grid, sourceFile, cfg.HeaderScanRows)

	result := domain.ImportResult{
		SourceFile:    sourceFile,
		HeaderRow:     -1,
		Parsed:        len(parsed.Messages),
		Rejected:      len(parsed.Rejects),
		RejectReasons: parsed.TallyRejects(),
	}

	if !parsed.HeaderFound {
		log.Warn("could not find eSMS header row")
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

	log.Info("parsed messages",
		zap.Int("valid", result.Parsed),
		zap.Int("rejected", result.Rejected),
		zap.Any("reject_reasons", result.RejectReasons),
	)
	if result.Parsed == 0 {
		log.Warn("no valid messages found")
		return result, nil
	}

	log.Info("loading customer and campaign mappings")
	snap, err := s.refMaps.MessageSnapshot(ctx, s.db)
	if err != nil {
		return result, err
	}
	log.Info("mappings loaded",
		zap.Int("phones", len(snap.CustomerByPhone)),
		zap.Int("templates", len(snap.CampaignByTemplate)),
		zap.Int("patterns", len(snap.Patterns)),
	)

	enrich(parsed.Messages, snap)

	loaded, batchErrs := s.repo.BulkInsert(ctx, s.db, parsed.Messages, cfg.MessageBatchSize)
	for _, batchErr := range batchErrs {
		metrics.IncBatchError(pipeline)
		log.Error("batch insert failed", zap.Error(batchErr))
	}
	result.Loaded = loaded
	result.BatchErrors = len(batchErrs)
	metrics.AddRowsLoaded(pipeline, loaded)

	log.Info("messages inserted",
		zap.Int("loaded", loaded),
		zap.Int("total", result.Parsed),
	)
	return result, nil
}

// enrich resolves customer identity by exact phone match and classifies
// the campaign: template id first, else the highest-priority content
// pattern whose text appears in the message body.
func enrich(messages []domain.Message, snap refmapdomain.MessageSnapshot) {
	for i := range messages {
		m := &messages[i]

		if id, ok := snap.CustomerByPhone[m.Phone]; ok {
			customerID := id
			m.CustomerID = &customerID
		}

		if m.TemplateID != nil {
			if id, ok := snap.CampaignByTemplate[*m.TemplateID]; ok {
				campaignID := id
				m.CampaignTypeID = &campaignID
				continue
			}
		}
		if m.Content == nil {
			continue
		}
		content := strings.ToLower(*m.Content)
		for _, p := range snap.Patterns {
			if strings.Contains(content, strings.ToLower(p.Pattern)) {
				campaignID := p.CampaignTypeID
				m.CampaignTypeID = &campaignID
				break
			}
		}
	}
}

package repository

import (
	"context"

	"github.com/matviet/cdp-importer/internal/importrun/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, run *domain.ImportRun) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, run *domain.ImportRun) error {
	return db.WithContext(ctx).
		Model(&domain.ImportRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{
			"status":         run.Status,
			"header_row":     run.HeaderRow,
			"parsed_count":   run.ParsedCount,
			"rejected_count": run.RejectedCount,
			"loaded_count":   run.LoadedCount,
			"batch_errors":   run.BatchErrors,
			"reject_reasons": run.RejectReasons,
			"error":          run.Error,
			"finished_at":    run.FinishedAt,
		}).Error
}

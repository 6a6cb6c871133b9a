package repository

import (
	"context"
	"fmt"

	"github.com/matviet/cdp-importer/internal/message/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) BulkInsert(ctx context.Context, db *gorm.DB, messages []domain.Message, batchSize int) (int, []error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	inserted := 0
	var errs []error
	for start := 0; start < len(messages); start += batchSize {
		end := start + batchSize
		if end > len(messages) {
			end = len(messages)
		}
		batch := messages[start:end]

		if err := db.WithContext(ctx).Create(&batch).Error; err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}
		inserted += len(batch)
	}
	return inserted, errs
}

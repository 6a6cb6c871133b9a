package repository

import (
	"context"
	"fmt"

	"github.com/matviet/cdp-importer/internal/order/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) BulkUpsert(ctx context.Context, db *gorm.DB, orders []domain.Order, batchSize int) (int, []error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	processed := 0
	var errs []error
	for start := 0; start < len(orders); start += batchSize {
		end := start + batchSize
		if end > len(orders) {
			end = len(orders)
		}
		batch := orders[start:end]

		err := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "order_number"}},
				DoNothing: true,
			}).
			Create(&batch).Error
		if err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}
		processed += len(batch)
	}
	return processed, errs
}

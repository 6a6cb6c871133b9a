package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Order is one normalized row of a POS sales export, destined for the
// orders table. OrderNumber is the natural key; the loader upserts with
// conflict target order_number and ignores full duplicates, so re-importing
// a file is idempotent.
type Order struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	OrderNumber  string     `gorm:"uniqueIndex;not null"`
	OrderDate    *time.Time `gorm:"index"`
	CustomerCode *string    `gorm:"column:customer_code"`
	StoreCode    *string    `gorm:"column:store_code"`
	NetAmount    float64    `gorm:"not null;default:0"`
	TotalAmount  float64    `gorm:"not null;default:0"`
	SalesStaff   *string    `gorm:"column:sales_staff"`
	CustomerID   *int64     `gorm:"column:customer_id;index"`
	StoreID      *int64     `gorm:"column:store_id;index"`
}

func (Order) TableName() string { return "orders" }

const (
	RejectMissingOrderNumber = "missing_order_number"
	RejectDuplicateInFile    = "duplicate_in_file"
	RejectMissingOrderDate   = "missing_order_date"
)

type Reject struct {
	Row    int
	Reason string
}

// ParseResult is the outcome of parsing one sales export.
type ParseResult struct {
	Orders      []Order
	Rejects     []Reject
	HeaderRow   int
	HeaderFound bool
	MissingCols []string
}

func (r ParseResult) TallyRejects() map[string]int {
	if len(r.Rejects) == 0 {
		return nil
	}
	tally := make(map[string]int)
	for _, rej := range r.Rejects {
		tally[rej.Reason]++
	}
	return tally
}

// ImportResult summarizes one file run through the orders pipeline.
type ImportResult struct {
	SourceFile    string
	HeaderRow     int
	Parsed        int
	Rejected      int
	RejectReasons map[string]int
	Loaded        int
	BatchErrors   int
}

type Service interface {
	ImportFile(ctx context.Context, path string) (ImportResult, error)
}

type Repository interface {
	// BulkUpsert writes orders in fixed-size chunks with
	// ON CONFLICT (order_number) DO NOTHING. A failed chunk is reported
	// and skipped; the returned count covers non-erroring chunks.
	BulkUpsert(ctx context.Context, db *gorm.DB, orders []Order, batchSize int) (int, []error)
}

package domain

import (
	"context"

	"gorm.io/gorm"
)

// ContentPattern classifies a message by substring match against its body.
// Patterns are evaluated in descending priority, first match wins.
type ContentPattern struct {
	Pattern        string
	CampaignTypeID int64
	Priority       int
}

// MessageSnapshot is the bulk-fetched reference state used to enrich one
// message file. Snapshots are re-read per import run, never cached.
type MessageSnapshot struct {
	CustomerByPhone    map[string]int64
	CampaignByTemplate map[string]int64
	Patterns           []ContentPattern
}

// OrderSnapshot is the reference state used to enrich one orders file.
type OrderSnapshot struct {
	CustomerByCode map[string]int64
	StoreByCode    map[string]int64
}

type Repository interface {
	MessageSnapshot(ctx context.Context, db *gorm.DB) (MessageSnapshot, error)
	OrderSnapshot(ctx context.Context, db *gorm.DB) (OrderSnapshot, error)
}

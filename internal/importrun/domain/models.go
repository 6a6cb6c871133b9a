package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusRunning  Status = "running"
	StatusImported Status = "imported"
	StatusEmpty    Status = "empty"
	StatusFailed   Status = "failed"
)

// ImportRun is the durable record of one file passing through a pipeline.
// It is what makes silent row-dropping and batch failures observable
// after the console output has scrolled away.
type ImportRun struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	Pipeline      string            `gorm:"not null;index"`
	SourceFile    string            `gorm:"not null"`
	Status        Status            `gorm:"not null;index"`
	HeaderRow     *int              `gorm:"column:header_row"`
	ParsedCount   int               `gorm:"not null;default:0"`
	RejectedCount int               `gorm:"not null;default:0"`
	LoadedCount   int               `gorm:"not null;default:0"`
	BatchErrors   int               `gorm:"not null;default:0"`
	RejectReasons datatypes.JSONMap `gorm:"type:jsonb"`
	Error         *string           `gorm:"column:error"`
	StartedAt     time.Time         `gorm:"not null"`
	FinishedAt    *time.Time
}

func (ImportRun) TableName() string { return "import_runs" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, run *ImportRun) error
	Update(ctx context.Context, db *gorm.DB, run *ImportRun) error
}

package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Channel is the delivery channel of a message row.
type Channel string

const (
	ChannelSMS Channel = "sms"
	ChannelZNS Channel = "zns"
)

// Message is one normalized row of an eSMS delivery report, destined for
// the sms_zns_messages table. Messages have no natural dedup key at load
// time; re-importing the same file duplicates rows (preserved behavior,
// see import_runs for observability).
type Message struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	MessageID      *string   `gorm:"column:message_id"`
	MessageType    *string   `gorm:"column:message_type"`
	Brandname      *string   `gorm:"column:brandname"`
	Channel        Channel   `gorm:"not null"`
	Phone          string    `gorm:"not null;index"`
	Content        *string   `gorm:"column:content"`
	TemplateID     *string   `gorm:"column:template_id"`
	SentAt         time.Time `gorm:"not null;index"`
	Network        *string   `gorm:"column:network"`
	TotalMT        int       `gorm:"column:total_mt;not null;default:1"`
	SuccessCount   int       `gorm:"not null;default:0"`
	FailCount      int       `gorm:"not null;default:0"`
	UnitPrice      float64   `gorm:"not null;default:0"`
	TotalCost      float64   `gorm:"not null;default:0"`
	ReportMonth    string    `gorm:"not null;index"`
	SourceFile     string    `gorm:"not null"`
	CustomerID     *int64    `gorm:"column:customer_id;index"`
	CampaignTypeID *int64    `gorm:"column:campaign_type_id;index"`
}

func (Message) TableName() string { return "sms_zns_messages" }

// Reject reasons surfaced per skipped row. Dropping stays silent at the
// row level but observable in aggregate.
const (
	RejectMissingPhone  = "missing_phone"
	RejectInvalidPhone  = "invalid_phone"
	RejectMissingSentAt = "missing_sent_at"
)

type Reject struct {
	Row    int
	Reason string
}

// ParseResult is the outcome of parsing one eSMS report file.
type ParseResult struct {
	Messages    []Message
	Rejects     []Reject
	HeaderRow   int  // zero-based; meaningful only when HeaderFound
	HeaderFound bool
	MissingCols []string // required fields absent from the header row
}

// TallyRejects aggregates reject reasons for logging and the run record.
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

// ImportResult summarizes one file run through the message pipeline.
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
	// BulkInsert writes messages in fixed-size chunks. A failed chunk is
	// reported and skipped; the returned count covers non-erroring chunks.
	BulkInsert(ctx context.Context, db *gorm.DB, messages []Message, batchSize int) (int, []error)
}

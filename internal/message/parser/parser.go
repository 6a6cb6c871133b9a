package parser

import (
	"strings"

	"github.com/matviet/cdp-importer/internal/message/domain"
	"github.com/matviet/cdp-importer/internal/normalize"
	"github.com/matviet/cdp-importer/internal/spreadsheet"
)

// Semantic fields of an eSMS delivery report.
const (
	FieldPhone       spreadsheet.Field = "phone"
	FieldMessageType spreadsheet.Field = "message_type"
	FieldBrandname   spreadsheet.Field = "brandname"
	FieldSentAt      spreadsheet.Field = "sent_at"
	FieldContent     spreadsheet.Field = "content"
	FieldNetwork     spreadsheet.Field = "network"
	FieldTotalMT     spreadsheet.Field = "total_mt"
	FieldSuccess     spreadsheet.Field = "success"
	FieldFail        spreadsheet.Field = "fail"
	FieldUnitPrice   spreadsheet.Field = "unit_price"
	FieldTotalCost   spreadsheet.Field = "total_cost"
	FieldTemplateID  spreadsheet.Field = "template_id"
	FieldMessageID   spreadsheet.Field = "message_id"
)

// headerRules is the declarative fragment table for eSMS headers.
var headerRules = []spreadsheet.HeaderRule{
	spreadsheet.Contains(FieldPhone, "điện thoại"),
	spreadsheet.Contains(FieldMessageType, "loại tin"),
	spreadsheet.Contains(FieldBrandname, "brandname"),
	spreadsheet.Contains(FieldSentAt, "thời gian gửi"),
	spreadsheet.Contains(FieldContent, "nội dung"),
	spreadsheet.Contains(FieldNetwork, "mạng"),
	spreadsheet.Contains(FieldTotalMT, "tổng số tin mt"),
	spreadsheet.Contains(FieldSuccess, "thành công"),
	spreadsheet.Contains(FieldFail, "thất bại"),
	spreadsheet.Contains(FieldUnitPrice, "đơn giá"),
	spreadsheet.Contains(FieldTotalCost, "thành tiền"),
	spreadsheet.Contains(FieldTemplateID, "template id"),
	spreadsheet.Contains(FieldMessageID, "mã tin nhắn"),
}

var requiredFields = []spreadsheet.Field{FieldPhone, FieldSentAt}

// isHeaderRow: an eSMS header carries the literal STT ordinal column and a
// phone column.
func isHeaderRow(row []string) bool {
	return spreadsheet.RowHasExactCell(row, "STT") &&
		spreadsheet.RowHasCell(row, "điện thoại")
}

// Parse turns a raw grid into normalized messages. Rows without a usable
// phone or send timestamp are rejected with a reason and never emitted.
func Parse(grid [][]string, sourceFile string, scanRows int) domain.ParseResult {
	headerRow, found := spreadsheet.FindHeader(grid, scanRows, isHeaderRow)
	if !found {
		return domain.ParseResult{HeaderFound: false}
	}

	cols := spreadsheet.MapColumns(grid[headerRow], headerRules)
	if missing := cols.Missing(requiredFields...); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, f := range missing {
			names = append(names, string(f))
		}
		return domain.ParseResult{HeaderFound: true, HeaderRow: headerRow, MissingCols: names}
	}

	result := domain.ParseResult{HeaderFound: true, HeaderRow: headerRow}
	for i := headerRow + 1; i < len(grid); i++ {
		row := grid[i]

		rawPhone := cols.Cell(row, FieldPhone)
		if rawPhone == "" {
			result.Rejects = append(result.Rejects, domain.Reject{Row: i, Reason: domain.RejectMissingPhone})
			continue
		}
		phone, ok := normalize.Phone(rawPhone)
		if !ok {
			result.Rejects = append(result.Rejects, domain.Reject{Row: i, Reason: domain.RejectInvalidPhone})
			continue
		}

		sentAt, ok := normalize.LocalDate(cols.Cell(row, FieldSentAt))
		if !ok {
			result.Rejects = append(result.Rejects, domain.Reject{Row: i, Reason: domain.RejectMissingSentAt})
			continue
		}

		messageType := cols.Cell(row, FieldMessageType)
		templateID := cols.Cell(row, FieldTemplateID)

		channel := domain.ChannelSMS
		if templateID != "" || strings.Contains(strings.ToLower(messageType), "zns") {
			channel = domain.ChannelZNS
		}

		unitPrice := normalize.Money(cols.Cell(row, FieldUnitPrice))
		totalCost := normalize.Money(cols.Cell(row, FieldTotalCost))
		if totalCost == 0 {
			totalCost = unitPrice
		}

		result.Messages = append(result.Messages, domain.Message{
			MessageID:    optional(cols.Cell(row, FieldMessageID)),
			MessageType:  optional(messageType),
			Brandname:    optional(cols.Cell(row, FieldBrandname)),
			Channel:      channel,
			Phone:        phone,
			Content:      optional(cols.Cell(row, FieldContent)),
			TemplateID:   optional(templateID),
			SentAt:       sentAt,
			Network:      optional(cols.Cell(row, FieldNetwork)),
			TotalMT:      normalize.Count(cols.Cell(row, FieldTotalMT), 1),
			SuccessCount: normalize.Count(cols.Cell(row, FieldSuccess), 0),
			FailCount:    normalize.Count(cols.Cell(row, FieldFail), 0),
			UnitPrice:    unitPrice,
			TotalCost:    totalCost,
			ReportMonth:  normalize.ReportMonth(sentAt),
			SourceFile:   sourceFile,
		})
	}

	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package parser

import (
	"github.com/matviet/cdp-importer/internal/normalize"
	"github.com/matviet/cdp-importer/internal/order/domain"
	"github.com/matviet/cdp-importer/internal/spreadsheet"
)

// Semantic fields of a "Báo cáo bán hàng" sales export.
const (
	FieldOrderNumber  spreadsheet.Field = "order_number"
	FieldOrderDate    spreadsheet.Field = "order_date"
	FieldCustomerCode spreadsheet.Field = "customer_code"
	FieldStoreCode    spreadsheet.Field = "store_code"
	FieldNetAmount    spreadsheet.Field = "net_amount"
	FieldTotalAmount  spreadsheet.Field = "total_amount"
	FieldSalesStaff   spreadsheet.Field = "sales_staff"
)

var headerRules = []spreadsheet.HeaderRule{
	spreadsheet.Contains(FieldOrderNumber, "số ct"),
	spreadsheet.Contains(FieldOrderDate, "ngày ct"),
	spreadsheet.Contains(FieldCustomerCode, "mã kh"),
	// Store code headers vary across exports; require both fragments in
	// one cell ("Mã CH", "Mã - CH"). Case-sensitive so the lowercase "ch"
	// inside "Mã khách hàng" cannot steal the customer column.
	{Field: FieldStoreCode, AnyOf: [][]string{{"Mã", "CH"}}, CaseSensitive: true},
	spreadsheet.Contains(FieldNetAmount, "thanh toán"),
	spreadsheet.Contains(FieldTotalAmount, "thành tiền"),
	spreadsheet.Contains(FieldSalesStaff, "nv1 bán", "nv bán"),
}

var requiredFields = []spreadsheet.Field{FieldOrderNumber}

func isHeaderRow(row []string) bool {
	return spreadsheet.RowHasCell(row, "Số CT") || spreadsheet.RowHasCell(row, "Mã KH")
}

// Parse turns a raw grid into normalized orders, deduplicating on order
// number within the file (first occurrence wins). Orders without a
// parseable timestamp are rejected here so the loader only ever sees
// loadable rows.
func Parse(grid [][]string, scanRows int) domain.ParseResult {
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
	seen := make(map[string]bool)

	for i := headerRow + 1; i < len(grid); i++ {
		row := grid[i]

		orderNumber := cols.Cell(row, FieldOrderNumber)
		if orderNumber == "" {
			result.Rejects = append(result.Rejects, domain.Reject{Row: i, Reason: domain.RejectMissingOrderNumber})
			continue
		}
		if seen[orderNumber] {
			result.Rejects = append(result.Rejects, domain.Reject{Row: i, Reason: domain.RejectDuplicateInFile})
			continue
		}
		seen[orderNumber] = true

		orderDate, ok := normalize.LocalDate(cols.Cell(row, FieldOrderDate))
		if !ok {
			result.Rejects = append(result.Rejects, domain.Reject{Row: i, Reason: domain.RejectMissingOrderDate})
			continue
		}

		result.Orders = append(result.Orders, domain.Order{
			OrderNumber:  orderNumber,
			OrderDate:    &orderDate,
			CustomerCode: optional(cols.Cell(row, FieldCustomerCode)),
			StoreCode:    optional(cols.Cell(row, FieldStoreCode)),
			NetAmount:    normalize.Money(cols.Cell(row, FieldNetAmount)),
			TotalAmount:  normalize.Money(cols.Cell(row, FieldTotalAmount)),
			SalesStaff:   optional(cols.Cell(row, FieldSalesStaff)),
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

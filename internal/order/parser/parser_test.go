package parser

import (
	"testing"
	"time"

	"github.com/matviet/cdp-importer/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salesHeader = []string{
	"Số CT", "Ngày CT", "Mã KH", "Mã CH", "Thanh toán", "Thành tiền", "NV1 bán",
}

func salesRow(orderNumber, orderDate, customerCode, storeCode, net, total, staff string) []string {
	return []string{orderNumber, orderDate, customerCode, storeCode, net, total, staff}
}

func TestParseMapsSalesColumns(t *testing.T) {
	grid := [][]string{
		{"Báo cáo bán hàng"},
		{},
		salesHeader,
		salesRow("HD001", "5/1/2026", "KH001", "CH01", "90,000", "100,000", "Lan"),
	}

	res := Parse(grid, 20)
	require.True(t, res.HeaderFound)
	assert.Equal(t, 2, res.HeaderRow)
	require.Len(t, res.Orders, 1)

	o := res.Orders[0]
	assert.Equal(t, "HD001", o.OrderNumber)
	require.NotNil(t, o.OrderDate)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local), *o.OrderDate)
	require.NotNil(t, o.CustomerCode)
	assert.Equal(t, "KH001", *o.CustomerCode)
	require.NotNil(t, o.StoreCode)
	assert.Equal(t, "CH01", *o.StoreCode)
	assert.Equal(t, 90000.0, o.NetAmount)
	assert.Equal(t, 100000.0, o.TotalAmount)
	require.NotNil(t, o.SalesStaff)
	assert.Equal(t, "Lan", *o.SalesStaff)
}

func TestParseHeaderDetectedByCustomerColumnAlone(t *testing.T) {
	grid := [][]string{
		{"preamble"},
		{"Mã KH", "Ngày CT"},
	}
	res := Parse(grid, 20)
	require.True(t, res.HeaderFound)
	assert.Equal(t, 1, res.HeaderRow)
	// Order number column absent: explicit incomplete map, no rows.
	assert.Equal(t, []string{"order_number"}, res.MissingCols)
}

func TestParseDeduplicatesWithinFile(t *testing.T) {
	grid := [][]string{
		salesHeader,
		salesRow("HD001", "5/1/2026", "KH001", "CH01", "100", "100", ""),
		salesRow("HD001", "5/1/2026", "KH002", "CH02", "999", "999", ""),
		salesRow("HD002", "6/1/2026", "KH002", "CH01", "200", "200", ""),
	}

	res := Parse(grid, 20)
	require.Len(t, res.Orders, 2)
	// First occurrence wins.
	assert.Equal(t, "KH001", *res.Orders[0].CustomerCode)
	assert.Equal(t, "HD002", res.Orders[1].OrderNumber)

	tally := res.TallyRejects()
	assert.Equal(t, 1, tally[domain.RejectDuplicateInFile])
}

func TestParseRejectsUnparseableRows(t *testing.T) {
	grid := [][]string{
		salesHeader,
		salesRow("", "5/1/2026", "KH001", "CH01", "100", "100", ""),
		salesRow("HD003", "not a date", "KH001", "CH01", "100", "100", ""),
	}

	res := Parse(grid, 20)
	assert.Empty(t, res.Orders)

	tally := res.TallyRejects()
	assert.Equal(t, 1, tally[domain.RejectMissingOrderNumber])
	assert.Equal(t, 1, tally[domain.RejectMissingOrderDate])
}

func TestParseLongCustomerHeaderDoesNotMapStoreCode(t *testing.T) {
	// "khách" contains "ch"; only the upper-case "CH" marks a store column.
	grid := [][]string{
		{"Số CT", "Ngày CT", "Mã khách hàng"},
		salesRow("HD001", "5/1/2026", "KH001", "", "", "", ""),
	}

	res := Parse(grid, 20)
	require.Len(t, res.Orders, 1)
	o := res.Orders[0]
	require.NotNil(t, o.CustomerCode)
	assert.Equal(t, "KH001", *o.CustomerCode)
	assert.Nil(t, o.StoreCode)
}

func TestParseMultiLineStoreHeader(t *testing.T) {
	grid := [][]string{
		{"Số CT", "Ngày CT", "Mã\nCH"},
		salesRow("HD001", "5/1/2026", "CHA1", "", "", "", ""),
	}

	res := Parse(grid, 20)
	require.Len(t, res.Orders, 1)
	require.NotNil(t, res.Orders[0].StoreCode)
	assert.Equal(t, "CHA1", *res.Orders[0].StoreCode)
}

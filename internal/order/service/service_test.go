package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/matviet/cdp-importer/internal/config"
	"github.com/matviet/cdp-importer/internal/order/domain"
	orderrepo "github.com/matviet/cdp-importer/internal/order/repository"
	refmaprepo "github.com/matviet/cdp-importer/internal/refmap/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "orders.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Order{}))

	stmts := []string{
		`CREATE TABLE customers (id INTEGER, customer_code TEXT)`,
		`CREATE TABLE stores (id INTEGER, store_code TEXT)`,
		`INSERT INTO customers VALUES (11, 'KH001')`,
		`INSERT INTO stores VALUES (21, 'CH01')`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Repo:    orderrepo.Provide(),
		RefMaps: refmaprepo.Provide(),
		Tunable: config.NewStaticImporterConfig(config.DefaultImporterConfig()),
	})
	return svc, db
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const salesCSV = `Báo cáo bán hàng
Số CT,Ngày CT,Mã KH,Mã CH,Thanh toán,Thành tiền,NV1 bán
HD001,5/1/2026,KH001,CH01,"90,000","100,000",Lan
HD002,6/1/2026,KH999,CH99,"50,000","50,000",Minh
HD001,5/1/2026,KH001,CH01,"90,000","100,000",Lan
`

func TestImportFileLoadsAndEnrichesOrders(t *testing.T) {
	svc, db := newTestService(t)
	path := writeCSV(t, "sales.csv", salesCSV)

	res, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, res.HeaderRow)
	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 2, res.Loaded)
	assert.Equal(t, 1, res.RejectReasons[domain.RejectDuplicateInFile])

	var stored []domain.Order
	require.NoError(t, db.Order("order_number").Find(&stored).Error)
	require.Len(t, stored, 2)

	first := stored[0]
	assert.Equal(t, "HD001", first.OrderNumber)
	assert.Equal(t, 90000.0, first.NetAmount)
	assert.Equal(t, 100000.0, first.TotalAmount)
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, int64(11), *first.CustomerID)
	require.NotNil(t, first.StoreID)
	assert.Equal(t, int64(21), *first.StoreID)

	// Unknown codes stay unresolved rather than failing the row.
	second := stored[1]
	assert.Equal(t, "HD002", second.OrderNumber)
	assert.Nil(t, second.CustomerID)
	assert.Nil(t, second.StoreID)
}

func TestImportFileReimportIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	path := writeCSV(t, "sales.csv", salesCSV)

	_, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	res, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, res.BatchErrors)

	// Conflicting order numbers are ignored on the second pass.
	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestImportFileNoHeaderYieldsEmptyResult(t *testing.T) {
	svc, _ := newTestService(t)
	path := writeCSV(t, "noise.csv", "a,b,c\nd,e,f\n")

	res, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, -1, res.HeaderRow)
	assert.Zero(t, res.Loaded)
}

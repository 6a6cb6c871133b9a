package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRefDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ref.db")), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE phone_customer_map (phone TEXT, customer_id INTEGER)`,
		`CREATE TABLE sms_template_campaign_map (template_id TEXT, campaign_type_id INTEGER)`,
		`CREATE TABLE sms_pattern_campaign_map (pattern TEXT, campaign_type_id INTEGER, priority INTEGER)`,
		`CREATE TABLE customers (id INTEGER, customer_code TEXT)`,
		`CREATE TABLE stores (id INTEGER, store_code TEXT)`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestMessageSnapshot(t *testing.T) {
	db := newRefDB(t)
	require.NoError(t, db.Exec(
		`INSERT INTO phone_customer_map VALUES ('0912345678', 101), ('0987654321', 102)`,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO sms_template_campaign_map VALUES ('TPL-9', 7)`,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO sms_pattern_campaign_map VALUES ('uu dai', 3, 5), ('khuyen mai', 4, 10)`,
	).Error)

	snap, err := Provide().MessageSnapshot(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(101), snap.CustomerByPhone["0912345678"])
	assert.Equal(t, int64(102), snap.CustomerByPhone["0987654321"])
	assert.Equal(t, int64(7), snap.CampaignByTemplate["TPL-9"])

	// Patterns come back highest priority first.
	require.Len(t, snap.Patterns, 2)
	assert.Equal(t, "khuyen mai", snap.Patterns[0].Pattern)
	assert.Equal(t, "uu dai", snap.Patterns[1].Pattern)
}

func TestMessageSnapshotEmptyTables(t *testing.T) {
	db := newRefDB(t)

	snap, err := Provide().MessageSnapshot(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, snap.CustomerByPhone)
	assert.Empty(t, snap.CampaignByTemplate)
	assert.Empty(t, snap.Patterns)
}

func TestOrderSnapshot(t *testing.T) {
	db := newRefDB(t)
	require.NoError(t, db.Exec(
		`INSERT INTO customers VALUES (11, 'KH001'), (12, 'KH002')`,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO stores VALUES (21, 'CH01')`,
	).Error)

	snap, err := Provide().OrderSnapshot(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(11), snap.CustomerByCode["KH001"])
	assert.Equal(t, int64(12), snap.CustomerByCode["KH002"])
	assert.Equal(t, int64(21), snap.StoreByCode["CH01"])
}

func TestSnapshotFailsOnMissingTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bare.db")), &gorm.Config{})
	require.NoError(t, err)

	_, err = Provide().MessageSnapshot(context.Background(), db)
	assert.Error(t, err)
}

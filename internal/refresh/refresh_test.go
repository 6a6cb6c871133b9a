package refresh

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "refresh.db")), &gorm.Config{})
	require.NoError(t, err)
	return New(Params{DB: db, Log: zap.NewNop()})
}

func TestRefreshAllSkipsMissingProcedures(t *testing.T) {
	o := newTestOrchestrator(t)

	results := o.RefreshAll(context.Background())

	// Combined SMS proc is absent, so both fallback procs are attempted.
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		assert.Equal(t, OutcomeSkipped, r.Outcome, r.Name)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, []string{
		procRFMMetrics,
		procNPSOrderIDs,
		procNPSViews,
		procAllSMSCaches,
		procSMSCache,
		procRevenueCache,
	}, names)
}

func TestCallAppliesExistingFunction(t *testing.T) {
	o := newTestOrchestrator(t)

	// Built-in scalar function stands in for a stored procedure.
	res := o.call(context.Background(), "date")
	assert.Equal(t, OutcomeApplied, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestCallReportsFailure(t *testing.T) {
	o := newTestOrchestrator(t)
	sqlDB, err := o.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res := o.call(context.Background(), procRFMMetrics)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
}

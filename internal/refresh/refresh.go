package refresh

import (
	"context"

	obsmetrics "github.com/matviet/cdp-importer/internal/observability/metrics"
	"github.com/matviet/cdp-importer/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcome of one refresh step.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// StepResult records what happened to a single remote recomputation.
// A procedure missing from the destination schema is an expected state
// during schema evolution and is reported as Skipped, not Failed.
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// The fixed post-import refresh sequence.
const (
	procRFMMetrics   = "update_rfm_metrics"
	procNPSOrderIDs  = "assign_nps_order_ids"
	procNPSViews     = "refresh_nps_views"
	procAllSMSCaches = "refresh_all_sms_caches"
	procSMSCache     = "refresh_sms_cache"
	procRevenueCache = "refresh_revenue_cache"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

// Orchestrator drives the dashboard cache recomputation after an import.
type Orchestrator struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) *Orchestrator {
	return &Orchestrator{
		db:  p.DB,
		log: p.Log.Named("refresh"),
	}
}

// RefreshAll attempts every step regardless of earlier failures: RFM
// metrics, NPS order-id assignment (±30-day eligibility window, applied
// inside the procedure), NPS materialized views, then the SMS/revenue
// caches — combined procedure first, two narrower ones when it errors.
func (o *Orchestrator) RefreshAll(ctx context.Context) []StepResult {
	o.log.Info("refreshing dashboard caches")

	results := []StepResult{
		o.call(ctx, procRFMMetrics),
		o.call(ctx, procNPSOrderIDs),
		o.call(ctx, procNPSViews),
	}
	results = append(results, o.refreshSMSCaches(ctx)...)

	o.log.Info("dashboard cache refresh finished")
	return results
}

func (o *Orchestrator) refreshSMSCaches(ctx context.Context) []StepResult {
	combined := o.call(ctx, procAllSMSCaches)
	if combined.Outcome == OutcomeApplied {
		return []StepResult{combined}
	}
	// Fall back to the per-cache procedures.
	return []StepResult{
		combined,
		o.call(ctx, procSMSCache),
		o.call(ctx, procRevenueCache),
	}
}

func (o *Orchestrator) call(ctx context.Context, proc string) StepResult {
	err := o.db.WithContext(ctx).Exec("SELECT " + proc + "()").Error

	result := StepResult{Name: proc}
	switch {
	case err == nil:
		result.Outcome = OutcomeApplied
		o.log.Info("refresh step applied", zap.String("step", proc))
	case db.IsUndefinedFunctionErr(err):
		result.Outcome = OutcomeSkipped
		o.log.Info("refresh step skipped, procedure not present", zap.String("step", proc))
	default:
		result.Outcome = OutcomeFailed
		result.Err = err
		o.log.Warn("refresh step failed", zap.String("step", proc), zap.Error(err))
	}

	obsmetrics.Importer().IncRefreshStep(proc, string(result.Outcome))
	return result
}

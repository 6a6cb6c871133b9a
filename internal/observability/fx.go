package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/matviet/cdp-importer/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module serves the prometheus registry over HTTP when METRICS_ADDR is
// set. Console logs remain the primary operational signal; the listener
// is opt-in.
var Module = fx.Module("observability",
	fx.Invoke(startMetricsListener),
)

func startMetricsListener(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				log.Info("metrics listener started", zap.String("addr", cfg.MetricsAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Warn("metrics listener stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

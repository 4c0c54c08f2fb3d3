package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betslip-tracker/internal/shared/config"
	"github.com/radieske/betslip-tracker/internal/shared/logger"
	"github.com/radieske/betslip-tracker/internal/shared/metrics"
	"github.com/radieske/betslip-tracker/internal/tracker/live"
	"github.com/radieske/betslip-tracker/internal/tracker/tui"
	"github.com/radieske/betslip-tracker/internal/tracker/window"
)

const serviceName = "tracker-viewer"

func main() {
	cfg := config.Load()
	cfg.ServiceName = serviceName
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	// na TUI o terminal é da interface: logs vão para arquivo
	var (
		log *zap.Logger
		err error
	)
	if cfg.ViewMode == "tui" {
		log, err = logger.NewToFile(serviceName, cfg.Env, cfg.LogFile)
	} else {
		log, err = logger.New(serviceName, cfg.Env)
	}
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	period, err := window.ParsePeriod(cfg.ViewPeriod)
	if err != nil {
		log.Fatal("invalid VIEW_PERIOD", zap.Error(err))
	}

	log.Info("starting viewer",
		zap.String("api", cfg.APIURL),
		zap.String("ws", cfg.WSURL),
		zap.String("mode", cfg.ViewMode),
		zap.String("period", string(period)),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// sinal de mudança sem bloquear o synchronizer; várias mudanças viram um redraw
	changes := make(chan struct{}, 1)
	onChange := func(live.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	syncer := live.New(log,
		live.NewAPIClient(cfg.APIURL),
		live.NewWSTransport(cfg.WSURL),
		live.NewFileMarkerStore(cfg.MarkerFile),
		live.Options{OnChange: onChange},
	)
	if err := syncer.Restore(); err != nil {
		log.Warn("restore marker failed", zap.String("file", cfg.MarkerFile), zap.Error(err))
	}

	if cfg.MetricsPort != "" {
		srv := metrics.StartMetricsServer(cfg.MetricsPort, log, nil)
		defer srv.Close()
	}

	go func() {
		if err := syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("synchronizer stopped", zap.Error(err))
		}
	}()

	if cfg.ViewMode == "tui" {
		app := tui.NewApp(syncer, changes, period, cfg.ViewCurrency)
		if err := app.Run(ctx); err != nil {
			log.Error("tui stopped", zap.Error(err))
		}
		cancel()
		log.Info("viewer stopped")
		return
	}

	logDashboards(ctx, log, syncer, changes, period, cfg.ViewCurrency)
	log.Info("viewer stopped")
}

// logDashboards registra o dashboard a cada mudança (modo headless)
func logDashboards(ctx context.Context, log *zap.Logger, syncer *live.Synchronizer, changes <-chan struct{}, period window.Period, currency string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			snap := syncer.Snapshot()
			d := syncer.View(period, currency, time.Now())
			log.Info("dashboard",
				zap.Stringer("state", snap.State),
				zap.Time("updated_at", snap.Marker),
				zap.String("period", string(d.Period)),
				zap.String("currency", d.Currency),
				zap.Int("bets", len(d.Bets)),
				zap.Int("settled", d.Summary.Total),
				zap.Int("winrate", d.Summary.WinRate),
				zap.String("profit", d.Summary.Profit.StringFixed(2)),
				zap.String("roi", d.Summary.ROI),
				zap.String("avg_odds", d.Summary.AvgOdds),
				zap.String("streak", fmt.Sprintf("%s x%d", d.Streak.Outcome, d.Streak.Length)),
			)
		}
	}
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/cmd/bootstrap"
	"medibook/cmd/bootstrap/components"
	"medibook/internal/handler/middleware"
	"medibook/internal/pkg/config"
	"medibook/internal/usecase/commands"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

func main() {
	backfillHospital := flag.String("backfill-tokens", "", "hospital ID whose legacy tokens should be rewritten, runs once and exits")
	expiryInterval := flag.Duration("expiry-interval", time.Minute, "how often stale pending online bookings are swept")
	flag.Parse()

	var (
		bookings    commands.BookingCommands
		maintenance commands.MaintenanceCommands
	)

	app := fx.New(
		bootstrap.ConfigModule,
		bootstrap.DBModule,
		bootstrap.JWTModule,
		components.PersistenceModule,
		components.UseCaseModule,
		fx.Provide(
			func(cfg config.Config) *slog.Logger {
				logger := middleware.NewLogger(cfg.Log)
				return logger.GetSlogLogger()
			},
		),
		fx.Populate(&bookings, &maintenance),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		slog.Error("worker failed to start", "error", err)
		os.Exit(1)
	}

	exitCode := 0
	if *backfillHospital != "" {
		exitCode = runBackfill(ctx, maintenance, *backfillHospital)
	} else {
		runExpirySweeper(ctx, bookings, *expiryInterval)
	}

	if err := app.Stop(ctx); err != nil {
		slog.Error("worker failed to stop cleanly", "error", err)
	}
	os.Exit(exitCode)
}

func runBackfill(ctx context.Context, maintenance commands.MaintenanceCommands, rawID string) int {
	hospitalID, err := uuid.Parse(rawID)
	if err != nil {
		slog.Error("invalid hospital ID for token backfill", "id", rawID, "error", err)
		return 1
	}

	rewritten, err := maintenance.BackfillLegacyTokens(ctx, hospitalID)
	if err != nil {
		slog.Error("legacy token backfill failed", "hospital_id", hospitalID, "error", err)
		return 1
	}

	slog.Info("legacy token backfill finished", "hospital_id", hospitalID, "rewritten", rewritten)
	return 0
}

func runExpirySweeper(ctx context.Context, bookings commands.BookingCommands, interval time.Duration) {
	slog.Info("starting payment expiry sweeper", "interval", interval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := bookings.ExpireStalePending(ctx)
			if err != nil {
				slog.Error("expiry sweep failed", "error", err)
				continue
			}
			if expired > 0 {
				slog.Info("expired stale pending bookings", "count", expired)
			}
		case sig := <-stop:
			slog.Info("stopping payment expiry sweeper", "signal", sig.String())
			return
		}
	}
}

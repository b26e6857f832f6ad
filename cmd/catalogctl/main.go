package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog-service/internal/app"
	"catalog-service/pkg/config"
	"catalog-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Maintenance commands for the catalog database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	withApp := func(run func(ctx context.Context, a *app.App, log *zap.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load("catalogctl")
			if err != nil {
				return err
			}
			if err := logger.InitLogger(&logger.LogConfig{
				Level:       logLevel,
				Environment: cfg.Server.Env,
				ServiceName: cfg.ServiceName,
			}); err != nil {
				return err
			}
			log := logger.GetLogger()
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(ctx, a, log)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog schema",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		}),
	})

	repair := &cobra.Command{
		Use:   "repair",
		Short: "Recompute derived catalog fields from source rows",
	}
	repair.AddCommand(&cobra.Command{
		Use:   "statuses",
		Short: "Recompute every product status from its variants",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
			result, err := a.Service.RecomputeAllProductStatuses(ctx)
			fmt.Printf("processed=%d changed=%d last_id=%d\n", result.Processed, result.Changed, result.LastID)
			return err
		}),
	})
	repair.AddCommand(&cobra.Command{
		Use:   "counters",
		Short: "Recompute every category, brand, size and color product count",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, log *zap.Logger) error {
			result, err := a.Service.RefreshAllCounters(ctx)
			fmt.Printf("processed=%d changed=%d\n", result.Processed, result.Changed)
			return err
		}),
	})
	root.AddCommand(repair)

	return root
}

package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/zulandar/evodex/internal/dex"
	"github.com/zulandar/evodex/internal/ingest"
	"github.com/zulandar/evodex/internal/logger"
	"github.com/zulandar/evodex/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		noIngest   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the JSON API. Unless --no-ingest is given, an ingestion run is started
in the background at boot; the API answers from whatever the store holds while
it runs. A configured resync schedule re-triggers ingestion periodically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, noIngest)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to evodex config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&noIngest, "no-ingest", false, "do not start ingestion at boot")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, noIngest bool) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := migrate(out, gormDB); err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	if cfg.Ingest.ResyncSchedule != "" {
		if err := ingest.ValidateSchedule(cfg.Ingest.ResyncSchedule); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := ingest.NewMetrics(reg)

	pipeline, _ := newPipeline(cfg, gormDB, log, metrics)
	runner := ingest.NewRunner(pipeline, cfg.Ingest.ExpectedTotal, log.With("component", "runner"), metrics)

	ctx, cancel := signalContext(func(sig os.Signal) {
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
	})
	defer cancel()

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}
	if notifier.Enabled() {
		runner.OnFinish(notifier.RunFinished(ctx, cfg.Ingest.ExpectedTotal))
	}

	if !noIngest {
		runner.Start(ctx)
	}
	if cfg.Ingest.ResyncSchedule != "" {
		sched, err := ingest.ScheduleResync(ctx, cfg.Ingest.ResyncSchedule, runner)
		if err != nil {
			return err
		}
		defer sched.Stop()
		log.Info("resync scheduled", "schedule", cfg.Ingest.ResyncSchedule)
	}

	return server.Start(ctx, server.StartOpts{
		Service:   dex.NewService(gormDB),
		Ingestion: runner,
		Gatherer:  reg,
		Port:      port,
		Out:       out,
		Log:       log.With("component", "http"),
	})
}

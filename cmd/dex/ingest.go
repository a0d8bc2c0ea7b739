package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/evodex/internal/ingest"
	"github.com/zulandar/evodex/internal/logger"
)

func newIngestCmd() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Populate the store from the remote catalog",
		Long: `Fetches the catalog index, every evolution chain and every entry, and writes
records and relations to the store. Does nothing when the store already holds
the expected number of records, unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to evodex config file")
	cmd.Flags().BoolVar(&force, "force", false, "clear the store and ingest even if it looks complete")
	return cmd
}

func runIngest(cmd *cobra.Command, configPath string, force bool) error {
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

	ctx, cancel := signalContext(func(sig os.Signal) {
		fmt.Fprintf(out, "\nReceived %s, stopping ingestion...\n", sig)
	})
	defer cancel()

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	pipeline, store := newPipeline(cfg, gormDB, log, nil)
	if force {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Cleared existing records and relations")
	}

	res, err := pipeline.IngestIfNeeded(ctx, cfg.Ingest.ExpectedTotal)
	notifier.RunFinished(ctx, cfg.Ingest.ExpectedTotal)(res, err)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	printResult(out, res, cfg.Ingest.ExpectedTotal)
	return nil
}

func printResult(out io.Writer, res ingest.Result, expected int) {
	if res.Skipped {
		fmt.Fprintf(out, "Store already holds %s of %s records, nothing to do\n",
			formatCount(res.Existing), formatCount(int64(expected)))
		return
	}
	fmt.Fprintf(out, "Ingested %s records and %s relations from %s entries\n",
		formatCount(int64(res.Records)), formatCount(int64(res.Relations)), formatCount(int64(res.Entries)))
	if res.Failed > 0 || res.FailedChains > 0 {
		fmt.Fprintf(out, "Skipped %d entries and %d chains after errors (see log)\n", res.Failed, res.FailedChains)
	}
}

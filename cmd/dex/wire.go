package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zulandar/evodex/internal/catalog"
	"github.com/zulandar/evodex/internal/conditions"
	"github.com/zulandar/evodex/internal/config"
	"github.com/zulandar/evodex/internal/db"
	"github.com/zulandar/evodex/internal/ingest"
	"github.com/zulandar/evodex/internal/logger"
	"github.com/zulandar/evodex/internal/notify"
	"github.com/zulandar/evodex/internal/notify/discord"
	"github.com/zulandar/evodex/internal/notify/slack"
	"gorm.io/gorm"
)

// connectFromConfig loads the config and opens the configured store.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s store: %w", cfg.Database.Driver, err)
	}
	return cfg, gormDB, nil
}

func languages(cfg *config.Config) catalog.Languages {
	return catalog.Languages{
		Preferred: cfg.Catalog.PreferredLanguage,
		Secondary: cfg.Catalog.SecondaryLanguage,
	}
}

// newPipeline wires the catalog client, condition cache builder and store
// into an ingestion pipeline.
func newPipeline(cfg *config.Config, gormDB *gorm.DB, log *logger.Logger, metrics *ingest.Metrics) (*ingest.Pipeline, *ingest.Store) {
	client := catalog.New(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.Catalog.Timeout(),
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		NamesTTL:          cfg.Catalog.NameCacheTTL(),
	})
	langs := languages(cfg)
	builder := conditions.NewBuilder(client, langs, cfg.Catalog.ChainPageLimit, log.With("component", "conditions"))
	store := ingest.NewStore(gormDB)
	p := ingest.NewPipeline(client, builder, store, ingest.Options{
		BatchSize: cfg.Ingest.BatchSize,
		Langs:     langs,
		Log:       log.With("component", "ingest"),
		Metrics:   metrics,
	})
	return p, store
}

// newNotifier builds a Notifier from the configured chat channels. With none
// configured it returns a Notifier that does nothing.
func newNotifier(cfg *config.Config, log *logger.Logger) (*notify.Notifier, error) {
	var adapters []notify.Adapter
	if c := cfg.Notify.Slack; c.Enabled() {
		a, err := slack.New(slack.AdapterOpts{BotToken: c.BotToken, ChannelID: c.Channel})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	if c := cfg.Notify.Discord; c.Enabled() {
		a, err := discord.New(discord.AdapterOpts{BotToken: c.BotToken, ChannelID: c.Channel})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return notify.New(log.With("component", "notify"), adapters...), nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. The
// callback, if any, runs once when a signal arrives.
func signalContext(onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

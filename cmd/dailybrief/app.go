package main

import (
	"context"
	"fmt"

	"dailybrief/pkg/config"
	"dailybrief/pkg/delivery"
	"dailybrief/pkg/dispatch"
	"dailybrief/pkg/extract"
	"dailybrief/pkg/pipeline"
	"dailybrief/pkg/scheduler"
	"dailybrief/pkg/source"
	"dailybrief/pkg/staging"
	"dailybrief/pkg/store"
)

// app bundles the wired scheduler with the resources it owns
type app struct {
	scheduler *scheduler.Scheduler
	store     dispatch.Store
}

// close releases the dispatch store
func (a *app) close(ctx context.Context) {
	_ = a.store.Close(ctx)
}

// buildApp loads config and wires the two pipelines end to end
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, err
	}

	stager, err := staging.NewWriter(cfg.StagingDir)
	if err != nil {
		return nil, err
	}

	recordStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gate := dispatch.NewGate(recordStore)

	extractor := extract.NewExtractor(
		extract.WithWindow(cfg.Source.Window),
		extract.WithMaxLines(cfg.Source.MaxLines),
	)

	textSource, err := buildTextSource(cfg)
	if err != nil {
		_ = recordStore.Close(ctx)
		return nil, err
	}
	chartSource := source.NewRendererSource(cfg.Renderer.Command, stager.Dir(), cfg.Renderer.Timeout)

	deliverer := buildDeliverer(cfg, stager.Dir())

	textPipe := pipeline.New(textSource, extractor, stager, gate, deliverer)
	chartPipe := pipeline.New(chartSource, extractor, stager, gate, deliverer)

	return &app{
		scheduler: scheduler.New(textPipe, chartPipe, cfg.Schedule.Daily),
		store:     recordStore,
	}, nil
}

// buildTextSource selects the daily-snippet source from config
func buildTextSource(cfg *config.Config) (pipeline.Fetcher, error) {
	switch cfg.Source.Kind {
	case "page":
		return source.NewPageSource(cfg.Source.PageURL, nil), nil
	case "feed":
		return source.NewFeedSource(cfg.Source.FeedURL), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}

// buildStore selects and connects the dispatch-record store backend
func buildStore(ctx context.Context, cfg *config.Config) (dispatch.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		return store.NewFileStore(cfg.Store.Path)
	case "postgres":
		s := store.NewPostgresStore(store.PostgresConfig{DSN: cfg.Store.DSN})
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		s := store.NewMongoStore(cfg.Store.MongoURI, cfg.Store.MongoDB, "")
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "supabase":
		s := store.NewSupabaseStore(store.SupabaseConfig{
			SupabaseURL: cfg.Store.SupabaseURL,
			SupabaseKey: cfg.Store.SupabaseKey,
			Password:    cfg.Store.SupabasePassword,
		})
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// buildDeliverer selects Telegram when a token is configured, console
// otherwise
func buildDeliverer(cfg *config.Config, stagingDir string) delivery.Deliverer {
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != "" {
		return delivery.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, stagingDir)
	}
	return delivery.NewConsole(nil)
}

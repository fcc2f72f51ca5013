package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/collector"
	"github.com/newthinker/alphapulse/internal/collector/polygon"
	"github.com/newthinker/alphapulse/internal/config"
	"github.com/newthinker/alphapulse/internal/insight"
	"github.com/newthinker/alphapulse/internal/llm/factory"
	"github.com/newthinker/alphapulse/internal/market"
	"github.com/newthinker/alphapulse/internal/metrics"
	"github.com/newthinker/alphapulse/internal/notifier"
	"github.com/newthinker/alphapulse/internal/notifier/email"
	"github.com/newthinker/alphapulse/internal/notifier/telegram"
	"github.com/newthinker/alphapulse/internal/notifier/webhook"
	"github.com/newthinker/alphapulse/internal/storage/alert"
	"github.com/newthinker/alphapulse/internal/storage/archive"
)

// Stack is an App together with the components it was assembled from.
type Stack struct {
	App       *App
	Market    *market.Client
	Search    *market.SearchClient
	Insight   *insight.Analyzer
	Notifier  *notifier.Platform
	Alerts    alert.Store
	Snapshots *archive.Snapshotter // nil when archiving is off
}

// Build assembles the App described by cfg. Without a Polygon key every
// market client runs on mock data, and without an LLM provider theses come
// from the deterministic fallback. reg may be nil.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg *metrics.Registry) (*Stack, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := buildProvider(cfg.Polygon, logger, reg)
	if err != nil {
		return nil, err
	}

	var marketOpts []market.Option
	if reg != nil {
		marketOpts = append(marketOpts, market.WithRecorder(reg))
	}
	marketClient := market.NewClient(provider, logger, marketOpts...)
	searchClient := market.NewSearchClient(provider, logger, marketOpts...)

	llmProvider, err := factory.New(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	insightOpts := []insight.Option{
		insight.WithTimeout(cfg.LLM.Timeout),
		insight.WithTemperature(cfg.LLM.Temperature),
	}
	if reg != nil {
		insightOpts = append(insightOpts, insight.WithRecorder(reg))
	}
	analyzer := insight.NewAnalyzer(llmProvider, logger, insightOpts...)

	channels, err := buildNotifiers(cfg.Notifiers)
	if err != nil {
		return nil, err
	}
	var platformOpts []notifier.PlatformOption
	if reg != nil {
		platformOpts = append(platformOpts, notifier.WithRecorder(reg))
	}
	platform := notifier.NewPlatform(channels, logger, platformOpts...)

	alerts := alert.NewMemoryStore(100)

	opts := []Option{
		WithTimings(Timings{
			DiscoveryEnabled: cfg.Demo.DiscoveryEnabled,
			DiscoveryDelay:   cfg.Demo.DiscoveryDelay,
			ToastDuration:    cfg.Demo.ToastDuration,
			SearchDebounce:   cfg.Demo.SearchDebounce,
		}),
		WithAlertStore(alerts),
	}
	if reg != nil {
		opts = append(opts, WithRecorder(reg))
	}

	storage, err := archive.Open(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	var snapshots *archive.Snapshotter
	if storage != nil {
		snapshots = archive.NewSnapshotter(storage, logger, time.Now)
		opts = append(opts, WithArchiver(snapshots, cfg.Archive.Keep))
	}

	a := New(Deps{
		Market:   marketClient,
		Chart:    market.NewChartClient(provider, logger, marketOpts...),
		News:     market.NewNewsClient(provider, logger, marketOpts...),
		Search:   searchClient,
		Insight:  analyzer,
		Notifier: platform,
	}, logger, opts...)

	logger.Info("AlphaPulse assembled",
		zap.Bool("live_market_data", provider != nil),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Int("notifiers", channels.Len()),
		zap.String("archive", cfg.Archive.Type),
	)

	return &Stack{
		App:       a,
		Market:    marketClient,
		Search:    searchClient,
		Insight:   analyzer,
		Notifier:  platform,
		Alerts:    alerts,
		Snapshots: snapshots,
	}, nil
}

// buildProvider returns nil, meaning mock mode, when no key is configured.
func buildProvider(cfg config.PolygonConfig, logger *zap.Logger, reg *metrics.Registry) (collector.Provider, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	opts := []polygon.Option{polygon.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, polygon.WithRecorder(reg))
	}
	client, err := polygon.New(collector.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating polygon client: %w", err)
	}
	return client, nil
}

// buildNotifiers registers every enabled channel in name order.
func buildNotifiers(cfgs map[string]config.NotifierConfig) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()

	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		nc := cfgs[name]
		if !nc.Enabled {
			continue
		}

		var n notifier.Notifier
		switch name {
		case "webhook":
			if nc.URL == "" {
				return nil, fmt.Errorf("notifier webhook: url is required")
			}
			n = webhook.New(nc.URL, nc.Headers)
		case "telegram":
			if nc.BotToken == "" || nc.ChatID == "" {
				return nil, fmt.Errorf("notifier telegram: bot_token and chat_id are required")
			}
			n = telegram.New(nc.BotToken, nc.ChatID)
		case "email":
			e := email.New(nc.Host, nc.Port, nc.Username, nc.Password, nc.From, nc.To)
			if err := e.Init(notifier.Config{}); err != nil {
				return nil, fmt.Errorf("notifier email: %w", err)
			}
			n = e
		default:
			return nil, fmt.Errorf("unknown notifier: %s", name)
		}

		if err := reg.Register(n); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

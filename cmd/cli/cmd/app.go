package cmd

import (
	"context"

	"go.uber.org/zap"

	"vsc-rating/core/catalog"
	"vsc-rating/core/output"
	"vsc-rating/core/rating"
	"vsc-rating/core/ratecard"
	"vsc-rating/core/taxfee"
	"vsc-rating/internal/config"
	"vsc-rating/internal/errors"
	"vsc-rating/internal/logging"
)

// app is everything a command needs, built from the loaded config.
type app struct {
	engine    *rating.Engine
	registry  *ratecard.Registry
	formatter output.Formatter
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newRegistry opens every configured rate card source.
func newRegistry(ctx context.Context, cfg *config.Config) (*ratecard.Registry, func(), error) {
	var (
		sources []ratecard.Source
		closer  = func() {}
	)
	if cfg.RateCards.Dir != "" {
		sources = append(sources, ratecard.NewFileSource(cfg.RateCards.Dir, cfg.RateCards.Pattern))
	}
	if cfg.RateCards.DatabaseURL != "" {
		pool, err := ratecard.NewPool(ctx, cfg.RateCards.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, ratecard.NewPGSource(pool))
		closer = pool.Close
	}
	if len(sources) == 0 {
		return nil, nil, errors.New(errors.TypeConfig, "no rate card source configured (set rate_cards.dir or rate_cards.database_url)")
	}
	return ratecard.NewRegistry(logging.Logger, sources...), closer, nil
}

// newApp wires the registry, catalog and engine. withEngine=false skips the
// catalog for commands that only inspect rate cards.
func newApp(ctx context.Context, cfg *config.Config, withEngine bool) (*app, error) {
	formatter, err := output.DefaultRegistry(cfg.Output.NoColor).Get(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	reg, closeReg, err := newRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{registry: reg, formatter: formatter, closers: []func(){closeReg}}
	if !withEngine {
		return a, nil
	}

	engine, err := newEngine(ctx, cfg, reg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = engine
	return a, nil
}

func newEngine(ctx context.Context, cfg *config.Config, reg *ratecard.Registry) (*rating.Engine, error) {
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	surcharges, err := cfg.SurchargeSchedule()
	if err != nil {
		return nil, err
	}
	fees, err := cfg.FeeSchedule()
	if err != nil {
		return nil, err
	}
	taxes, err := cfg.TaxTables()
	if err != nil {
		return nil, err
	}

	engine := rating.NewEngine(cat, reg,
		rating.WithLogger(logging.Logger),
		rating.WithSurchargeSchedule(surcharges),
		rating.WithTaxFee(taxfee.NewCalculator(taxes, fees)),
		rating.WithLimits(cfg.Limits()),
	)
	if err := engine.Prepare(ctx); err != nil {
		return nil, err
	}
	stats := cat.Stats()
	logging.Debug("engine ready",
		zap.Int("products", stats.Total),
		zap.Int("providers", stats.Providers))
	return engine, nil
}

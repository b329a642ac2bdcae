package rating

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"vsc-rating/core/catalog"
	"vsc-rating/core/coverage"
	"vsc-rating/core/eligibility"
	"vsc-rating/core/ratecard"
	"vsc-rating/core/surcharge"
	"vsc-rating/core/taxfee"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
	"vsc-rating/internal/logging"
)

// Engine picks the strategy for a product and rates requests with it.
// Strategy selection is a pure function of the product's catalog entry.
type Engine struct {
	catalog  *catalog.Catalog
	registry *ratecard.Registry
	logger   *zap.Logger
	pricer   pricer
	now      func() time.Time
	limits   eligibility.Limits

	mu         sync.RWMutex
	strategies map[string]Strategy
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l) }
}

// WithClock injects the clock used for vehicle age and RatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.pricer.now = now
	}
}

// WithSurchargeSchedule overrides the default surcharge amounts.
func WithSurchargeSchedule(s surcharge.Schedule) Option {
	return func(e *Engine) { e.pricer.surcharges = surcharge.NewCalculator(s) }
}

// WithTaxFee overrides the tax table and fee schedule.
func WithTaxFee(c *taxfee.Calculator) Option {
	return func(e *Engine) { e.pricer.taxfee = c }
}

// WithLimits overrides the eligibility limits.
func WithLimits(l eligibility.Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithQuoteIDs overrides quote id generation.
func WithQuoteIDs(newID func() string) Option {
	return func(e *Engine) { e.pricer.newID = newID }
}

// NewEngine creates an engine over a catalog and a rate card registry.
func NewEngine(cat *catalog.Catalog, reg *ratecard.Registry, opts ...Option) *Engine {
	e := &Engine{
		catalog:    cat,
		registry:   reg,
		logger:     zap.NewNop(),
		pricer:     defaultPricer(),
		now:        time.Now,
		limits:     eligibility.DefaultLimits(),
		strategies: make(map[string]Strategy),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare builds the strategy of every catalog product. A table product
// whose rate card is missing fails here; there is no fallback pricing.
func (e *Engine) Prepare(ctx context.Context) error {
	for _, p := range e.catalog.Products() {
		if _, err := e.Strategy(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Strategy returns the strategy for a product, building it on first use.
func (e *Engine) Strategy(ctx context.Context, productID string) (Strategy, error) {
	product, err := e.catalog.Get(productID)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	s, ok := e.strategies[product.ID]
	e.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err = e.build(ctx, product)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.strategies[product.ID]; ok {
		return existing, nil
	}
	e.strategies[product.ID] = s
	e.logger.Debug("strategy selected",
		zap.String("product", product.ID),
		zap.String("provider", product.Provider),
		zap.String("strategy", product.Strategy.String()))
	return s, nil
}

func (e *Engine) build(ctx context.Context, product *catalog.Product) (Strategy, error) {
	switch product.Strategy {
	case catalog.StrategyTable:
		table, err := e.tableFor(ctx, product)
		if err != nil {
			return nil, err
		}
		return &TableStrategy{
			product: product,
			table:   table,
			checker: eligibility.NewChecker(
				eligibility.WithClock(e.now),
				eligibility.WithLimits(e.limits),
				eligibility.WithRateTable(table)),
			pricer: e.pricer,
		}, nil
	case catalog.StrategyMultiplier:
		return &MultiplierStrategy{
			product: product,
			checker: eligibility.NewChecker(
				eligibility.WithClock(e.now),
				eligibility.WithLimits(e.limits)),
			pricer: e.pricer,
		}, nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "product %s has unknown strategy %q", product.ID, product.Strategy)
	}
}

func (e *Engine) tableFor(ctx context.Context, product *catalog.Product) (*ratecard.Table, error) {
	if e.registry == nil {
		return nil, errors.Newf(errors.TypeConfig, "product %s needs a rate card but no rate card store is configured", product.ID)
	}
	var (
		table *ratecard.Table
		err   error
	)
	if product.RateCardVersion != "" {
		table, err = e.registry.Version(ctx, product.Provider, product.RateCard, product.RateCardVersion)
	} else {
		table, err = e.registry.Latest(ctx, product.Provider, product.RateCard)
	}
	if errors.IsType(err, errors.TypeNotFound) {
		return nil, errors.Config(fmt.Sprintf("product %s: rate card %s/%s is missing",
			product.ID, product.Provider, product.RateCard), err)
	}
	return table, err
}

// Rate rates one request.
func (e *Engine) Rate(ctx context.Context, req Request) (Outcome, error) {
	s, err := e.Strategy(ctx, req.Product)
	if err != nil {
		return Outcome{}, err
	}
	out, err := s.Rate(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	if out.Ineligible != nil {
		e.logger.Debug("vehicle ineligible",
			zap.String("product", req.Product),
			zap.Strings("reasons", out.Ineligible.Eligibility.Messages()),
			zap.Bool("allow_special_quote", out.Ineligible.Eligibility.AllowSpecialQuote))
	} else {
		e.logger.Debug("quote rated",
			zap.String("product", req.Product),
			zap.String("quote_id", out.Quote.QuoteID),
			zap.String("total", out.Quote.TotalPremium.StringFixed(2)))
	}
	return out, nil
}

// ValidOptions lists the term lengths and distances that can be priced for
// a vehicle, ascending with unlimited last. Vehicles that are ineligible by
// class or mileage get no options.
func (e *Engine) ValidOptions(ctx context.Context, productID string, v vehicle.Descriptor) (Options, error) {
	if err := v.Validate(); err != nil {
		return Options{}, err
	}
	s, err := e.Strategy(ctx, productID)
	if err != nil {
		return Options{}, err
	}

	empty := Options{TermLengths: []int{}, Distances: []coverage.Distance{}}
	class, bracket := v.Class(), v.Bracket()
	if class == vehicle.ClassIneligible || !bracket.IsRated() {
		return empty, nil
	}

	opts := empty
	opts.ByTerm = make(map[int][]coverage.Distance)
	switch st := s.(type) {
	case *TableStrategy:
		seen := make(map[coverage.Distance]bool)
		for _, term := range st.table.Terms(class, bracket) {
			ds := st.table.Distances(class, term, bracket)
			opts.TermLengths = append(opts.TermLengths, term)
			opts.ByTerm[term] = ds
			for _, d := range ds {
				if !seen[d] {
					seen[d] = true
					opts.Distances = append(opts.Distances, d)
				}
			}
		}
	case *MultiplierStrategy:
		opts.TermLengths = append(opts.TermLengths, st.product.Terms...)
		opts.Distances = append(opts.Distances, st.product.Distances...)
		for _, term := range st.product.Terms {
			opts.ByTerm[term] = append([]coverage.Distance(nil), st.product.Distances...)
		}
	}

	sort.Ints(opts.TermLengths)
	sort.Slice(opts.Distances, func(i, j int) bool { return opts.Distances[i].Less(opts.Distances[j]) })
	return opts, nil
}

// Catalog returns the engine's product catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

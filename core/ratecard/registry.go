package ratecard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vsc-rating/core/coverage"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
	"vsc-rating/internal/logging"
)

// Registry is the versioned, write-once store of rate tables.
// Tables are loaded once from the configured sources and then served
// read-only. The highest semver per provider/product is the active one.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	logger  *zap.Logger

	loaded bool
	// provider/product -> versions ascending
	index map[string][]*Table
}

// Metadata describes one stored table version.
type Metadata struct {
	Provider    string    `json:"provider"`
	Product     string    `json:"product"`
	Version     string    `json:"version"`
	EffectiveAt time.Time `json:"effective_at"`
	ContentHash string    `json:"content_hash"`
	Cells       int       `json:"cells"`
	Priced      int       `json:"priced"`
	Origin      string    `json:"origin"`
	Active      bool      `json:"active"`
}

// VerifyResult is the integrity status of one stored table.
type VerifyResult struct {
	ID  string
	Err error
}

// NewRegistry creates a registry over the given sources.
func NewRegistry(logger *zap.Logger, sources ...Source) *Registry {
	return &Registry{
		sources: sources,
		logger:  logging.OrNop(logger),
		index:   make(map[string][]*Table),
	}
}

func indexKey(provider, product string) string {
	return strings.ToLower(provider) + "/" + strings.ToLower(product)
}

// Load reads every source. It is a no-op once loaded.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}

	index := make(map[string][]*Table)
	for _, src := range r.sources {
		tables, err := src.Load(ctx)
		if err != nil {
			return err
		}
		for _, t := range tables {
			if err := insert(index, t); err != nil {
				return err
			}
			r.logger.Debug("rate card loaded",
				zap.String("source", src.Name()),
				zap.String("id", t.ID()),
				zap.String("hash", t.ContentHash.Hex()),
				zap.Int("cells", t.Len()))
		}
	}
	for _, versions := range index {
		sort.Slice(versions, func(i, j int) bool { return versions[i].Version.LessThan(versions[j].Version) })
	}

	r.index = index
	r.loaded = true
	r.logger.Info("rate cards ready", zap.Int("products", len(index)))
	return nil
}

// insert adds a table. A version is written once: the same version with
// different content is an integrity error, identical content is ignored.
func insert(index map[string][]*Table, t *Table) error {
	key := indexKey(t.Provider, t.Product)
	for _, existing := range index[key] {
		if !existing.Version.Equal(t.Version) {
			continue
		}
		if existing.ContentHash == t.ContentHash {
			return nil
		}
		return errors.Integrity(fmt.Sprintf("rate card %s defined twice with different content (%s, %s)",
			t.ID(), existing.Origin, t.Origin))
	}
	index[key] = append(index[key], t)
	return nil
}

// Latest returns the active (highest version) table for a provider/product.
func (r *Registry) Latest(ctx context.Context, provider, product string) (*Table, error) {
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.index[indexKey(provider, product)]
	if len(versions) == 0 {
		return nil, errors.NotFound("rate card", provider+"/"+product)
	}
	return versions[len(versions)-1], nil
}

// Version returns a specific version of a table.
func (r *Registry) Version(ctx context.Context, provider, product, version string) (*Table, error) {
	want, err := semver.NewVersion(version)
	if err != nil {
		return nil, errors.Inputf("invalid rate card version %q", version)
	}
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.index[indexKey(provider, product)] {
		if t.Version.Equal(want) {
			return t, nil
		}
	}
	return nil, errors.NotFound("rate card", fmt.Sprintf("%s/%s@%s", provider, product, version))
}

// Lookup finds a premium in the active table. The distance is normalized
// first. Any missing level, including a missing table, is not found.
func (r *Registry) Lookup(ctx context.Context, provider, product string, class vehicle.Class, term int, bracket vehicle.Bracket, distance string) (decimal.Decimal, bool) {
	d, err := coverage.ParseDistance(distance)
	if err != nil {
		return decimal.Zero, false
	}
	t, err := r.Latest(ctx, provider, product)
	if err != nil {
		return decimal.Zero, false
	}
	return t.Lookup(Key{Class: class, TermMonths: term, Bracket: bracket, Distance: d})
}

// ListVersions returns every stored version, grouped by provider/product
// and ascending by version. An empty provider lists all.
func (r *Registry) ListVersions(ctx context.Context, provider, product string) ([]Metadata, error) {
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.index))
	for k := range r.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Metadata
	for _, k := range keys {
		versions := r.index[k]
		for i, t := range versions {
			if provider != "" && !strings.EqualFold(provider, t.Provider) {
				continue
			}
			if product != "" && !strings.EqualFold(product, t.Product) {
				continue
			}
			out = append(out, Metadata{
				Provider:    t.Provider,
				Product:     t.Product,
				Version:     t.Version.String(),
				EffectiveAt: t.EffectiveAt,
				ContentHash: t.ContentHash.Hex(),
				Cells:       t.Len(),
				Priced:      t.Priced(),
				Origin:      t.Origin,
				Active:      i == len(versions)-1,
			})
		}
	}
	return out, nil
}

// Verify recomputes the content hash of every stored table.
func (r *Registry) Verify(ctx context.Context) ([]VerifyResult, error) {
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []VerifyResult
	for _, versions := range r.index {
		for _, t := range versions {
			out = append(out, VerifyResult{ID: t.ID(), Err: t.Verify()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

package ratecard

import (
	"context"
	"os"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsc-rating/core/coverage"
	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

func TestFileSourceDiscoversNestedCards(t *testing.T) {
	src := NewFileSource("testdata/cards", "")
	tables, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "acme-warranty/powertrain@1.0.0", tables[0].ID())
	assert.Equal(t, "acme-warranty/powertrain@1.1.0", tables[1].ID())
}

func TestRegistryLatestAndVersions(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, NewFileSource("testdata/cards", ""))

	latest, err := reg.Latest(ctx, "ACME-Warranty", "powertrain")
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", latest.Version.String())

	old, err := reg.Version(ctx, "acme-warranty", "powertrain", "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", old.Version.String())

	_, err = reg.Version(ctx, "acme-warranty", "powertrain", "3.0.0")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	_, err = reg.Latest(ctx, "acme-warranty", "wrap")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	versions, err := reg.ListVersions(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.False(t, versions[0].Active)
	assert.True(t, versions[1].Active)
	assert.Equal(t, 6, versions[1].Cells)
	assert.Equal(t, 5, versions[1].Priced)
}

func TestRegistryLookupNormalizesDistance(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(nil, NewFileSource("testdata/cards", ""))

	p, ok := reg.Lookup(ctx, "acme-warranty", "powertrain", vehicle.ClassB, 36, vehicle.BracketFor(40000), "45,000")
	require.True(t, ok)
	assert.Equal(t, "1325", p.String())

	q, ok := reg.Lookup(ctx, "acme-warranty", "powertrain", vehicle.ClassB, 36, vehicle.BracketFor(40000), "45000")
	require.True(t, ok)
	assert.True(t, p.Equal(q))

	_, ok = reg.Lookup(ctx, "acme-warranty", "powertrain", vehicle.ClassB, 36, vehicle.BracketFor(40000), "Unlimited")
	assert.False(t, ok)
	_, ok = reg.Lookup(ctx, "acme-warranty", "powertrain", vehicle.ClassC, 36, vehicle.BracketFor(40000), "45000")
	assert.False(t, ok)
	_, ok = reg.Lookup(ctx, "nobody", "nothing", vehicle.ClassB, 36, vehicle.BracketFor(40000), "45000")
	assert.False(t, ok)
}

func TestRegistryWriteOnce(t *testing.T) {
	build := func(premium string) *Table {
		tbl, err := NewBuilder("acme", "powertrain", semver.MustParse("1.0.0")).
			Set(key(vehicle.ClassB, 36, 40000, coverage.MilesDistance(45000)), Price(decimal.RequireFromString(premium))).
			Build()
		require.NoError(t, err)
		return tbl
	}

	same := NewRegistry(nil, StaticSource{build("100"), build("100")})
	require.NoError(t, same.Load(context.Background()))

	conflicting := NewRegistry(nil, StaticSource{build("100"), build("101")})
	err := conflicting.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeIntegrity))
}

func TestRegistryVerify(t *testing.T) {
	reg := NewRegistry(nil, NewFileSource("testdata/cards", ""))
	results, err := reg.Verify(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err, r.ID)
	}
}

func TestRegistryRejectsTamperedCard(t *testing.T) {
	reg := NewRegistry(nil, NewFileSource("testdata/tampered", ""))
	err := reg.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeIntegrity))
}

func TestPGSource(t *testing.T) {
	dbURL := os.Getenv("VSCRATE_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("VSCRATE_TEST_DATABASE_URL not set; skipping integration test")
	}
	ctx := context.Background()

	writer, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer writer.Close()

	_, err = writer.Exec(ctx, `CREATE TABLE IF NOT EXISTS rate_cards (
		provider text NOT NULL, product text NOT NULL, version text NOT NULL,
		document text NOT NULL, active boolean NOT NULL DEFAULT true,
		PRIMARY KEY (provider, product, version))`)
	require.NoError(t, err)

	doc, err := os.ReadFile("testdata/cards/acme/powertrain-1.0.0.yaml")
	require.NoError(t, err)
	_, err = writer.Exec(ctx, `INSERT INTO rate_cards (provider, product, version, document)
		VALUES ($1, $2, $3, $4) ON CONFLICT (provider, product, version) DO UPDATE SET document = EXCLUDED.document`,
		"acme-warranty", "powertrain", "1.0.0", string(doc))
	require.NoError(t, err)

	pool, err := NewPool(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()

	tables, err := NewPGSource(pool).Load(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(tables))
	for _, tbl := range tables {
		ids = append(ids, tbl.ID())
	}
	assert.Contains(t, ids, "acme-warranty/powertrain@1.0.0")
}

func TestNewPoolRequiresURL(t *testing.T) {
	_, err := NewPool(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

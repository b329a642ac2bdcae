package ratecard

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"vsc-rating/internal/errors"
)

// pgQuery returns every active rate card document. Versions are ordered by
// the registry, not the database.
const pgQuery = `SELECT provider, product, version, document
FROM rate_cards
WHERE active
ORDER BY provider, product, version`

// PGSource reads YAML rate card documents stored in Postgres:
//
//	CREATE TABLE rate_cards (
//	    provider   text    NOT NULL,
//	    product    text    NOT NULL,
//	    version    text    NOT NULL,
//	    document   text    NOT NULL,
//	    active     boolean NOT NULL DEFAULT true,
//	    PRIMARY KEY (provider, product, version)
//	);
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPool opens a small read-only pool for rate card loading.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.Config("rate card database URL is not set", nil)
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Config("invalid rate card database URL", err)
	}
	cfg.MaxConns = 2
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.RuntimeParams["application_name"] = "vsc-rating"
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Config("cannot connect to rate card database", err)
	}
	return pool, nil
}

// NewPGSource wraps an open pool.
func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

// Name returns the source name
func (s *PGSource) Name() string {
	return "postgres:rate_cards"
}

// Load reads and parses every active document.
func (s *PGSource) Load(ctx context.Context) ([]*Table, error) {
	rows, err := s.pool.Query(ctx, pgQuery)
	if err != nil {
		return nil, errors.Config("rate card query failed", err)
	}
	defer rows.Close()

	var tables []*Table
	for rows.Next() {
		var provider, product, version, document string
		if err := rows.Scan(&provider, &product, &version, &document); err != nil {
			return nil, errors.Config("rate card row scan failed", err)
		}
		origin := fmt.Sprintf("rate_cards(%s,%s,%s)", provider, product, version)
		t, err := Parse([]byte(document), origin)
		if err != nil {
			return nil, err
		}
		rowVersion, err := semver.NewVersion(version)
		if err != nil || t.Provider != provider || t.Product != product || !rowVersion.Equal(t.Version) {
			return nil, errors.Integrity(fmt.Sprintf("%s: document identity %s does not match its row", origin, t.ID()))
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Config("rate card rows failed", err)
	}
	return tables, nil
}

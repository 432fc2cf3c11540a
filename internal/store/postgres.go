package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rickgao/listing-watch/internal/model"
)

const createMarketsTable = `
	CREATE TABLE IF NOT EXISTS markets (
		id            TEXT        NOT NULL,
		exchange      TEXT        NOT NULL,
		base          TEXT        NOT NULL DEFAULT '',
		quote         TEXT        NOT NULL DEFAULT '',
		is_trading    BOOLEAN     NOT NULL DEFAULT FALSE,
		status        TEXT        NOT NULL DEFAULT '',
		tick_size     NUMERIC     NOT NULL DEFAULT 0,
		lot_step      NUMERIC     NOT NULL DEFAULT 0,
		metadata      JSONB       NOT NULL DEFAULT '{}',
		first_seen_at TIMESTAMPTZ NOT NULL,
		last_seen_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (id, exchange)
	)`

// addMarketDetails upgrades tables created before the detail columns existed.
var addMarketDetails = []string{
	`ALTER TABLE markets ADD COLUMN IF NOT EXISTS status TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE markets ADD COLUMN IF NOT EXISTS tick_size NUMERIC NOT NULL DEFAULT 0`,
	`ALTER TABLE markets ADD COLUMN IF NOT EXISTS lot_step NUMERIC NOT NULL DEFAULT 0`,
	`ALTER TABLE markets ADD COLUMN IF NOT EXISTS metadata JSONB NOT NULL DEFAULT '{}'`,
}

const recordColumns = `id, exchange, base, quote, is_trading, status,
	tick_size::text, lot_step::text, metadata, first_seen_at, last_seen_at`

// Postgres stores records in the markets table.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the markets table if it does not exist and adds any
// missing detail columns.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createMarketsTable); err != nil {
		return err
	}
	for _, stmt := range addMarketDetails {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM markets`).Scan(&n); err != nil {
		return 0, &Error{Op: "count", Err: err}
	}
	return n, nil
}

func (p *Postgres) FindOne(ctx context.Context, id, exchange string) (*model.MarketRecord, error) {
	row := p.db.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM markets
		WHERE id = $1 AND exchange = $2
	`, id, exchange)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "find", Exchange: exchange, MarketID: id, Err: err}
	}
	return &rec, nil
}

// Upsert writes one record with ON CONFLICT. is_trading is OR-ed with the
// stored value so a concurrent writer can never regress it.
func (p *Postgres) Upsert(ctx context.Context, rec model.MarketRecord) (model.MarketRecord, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO markets (id, exchange, base, quote, is_trading, status,
			tick_size, lot_step, metadata, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9, $10, $11)
		ON CONFLICT (id, exchange) DO UPDATE SET
			base         = EXCLUDED.base,
			quote        = EXCLUDED.quote,
			is_trading   = markets.is_trading OR EXCLUDED.is_trading,
			status       = EXCLUDED.status,
			tick_size    = EXCLUDED.tick_size,
			lot_step     = EXCLUDED.lot_step,
			metadata     = EXCLUDED.metadata,
			last_seen_at = EXCLUDED.last_seen_at
		RETURNING `+recordColumns,
		rec.ID, rec.Exchange, rec.Base, rec.Quote, rec.IsTrading, rec.Status,
		rec.TickSize.String(), rec.LotStep.String(), metadataOrEmpty(rec.Metadata),
		rec.FirstSeenAt.UTC(), rec.LastSeenAt.UTC())

	stored, err := scanRecord(row)
	if err != nil {
		return model.MarketRecord{}, &Error{Op: "upsert", Exchange: rec.Exchange, MarketID: rec.ID, Err: err}
	}
	return stored, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *Postgres) Close() {
	p.db.Close()
}

func scanRecord(row pgx.Row) (model.MarketRecord, error) {
	var (
		rec           model.MarketRecord
		tick, lotStep string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Exchange,
		&rec.Base,
		&rec.Quote,
		&rec.IsTrading,
		&rec.Status,
		&tick,
		&lotStep,
		&rec.Metadata,
		&rec.FirstSeenAt,
		&rec.LastSeenAt,
	)
	if err != nil {
		return rec, err
	}
	if rec.TickSize, err = decimal.NewFromString(tick); err != nil {
		return rec, fmt.Errorf("tick_size %q: %w", tick, err)
	}
	if rec.LotStep, err = decimal.NewFromString(lotStep); err != nil {
		return rec, fmt.Errorf("lot_step %q: %w", lotStep, err)
	}
	rec.FirstSeenAt = rec.FirstSeenAt.UTC()
	rec.LastSeenAt = rec.LastSeenAt.UTC()
	return rec, nil
}

// metadataOrEmpty keeps a nil map from being stored as JSON null.
func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/listing-watch/internal/model"
)

// testDSNEnv names a disposable Postgres database. Tests drop and recreate the
// markets table in it.
const testDSNEnv = "LISTING_WATCH_TEST_DSN"

// openTestPostgres returns a freshly migrated Postgres store, or nil when no
// test database is configured.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS markets`)
	require.NoError(t, err)

	pg := NewPostgres(pool)
	require.NoError(t, pg.Migrate(ctx))
	t.Cleanup(pg.Close)
	return pg
}

func requirePostgres(t *testing.T) *Postgres {
	t.Helper()
	pg := openTestPostgres(t)
	if pg == nil {
		t.Skipf("%s not set", testDSNEnv)
	}
	return pg
}

func TestPostgres_MigrateAddsDetailColumns(t *testing.T) {
	pg := requirePostgres(t)
	ctx := context.Background()

	// Recreate the table as it looked before the detail columns.
	_, err := pg.db.Exec(ctx, `DROP TABLE markets`)
	require.NoError(t, err)
	_, err = pg.db.Exec(ctx, `
		CREATE TABLE markets (
			id            TEXT        NOT NULL,
			exchange      TEXT        NOT NULL,
			base          TEXT        NOT NULL DEFAULT '',
			quote         TEXT        NOT NULL DEFAULT '',
			is_trading    BOOLEAN     NOT NULL DEFAULT FALSE,
			first_seen_at TIMESTAMPTZ NOT NULL,
			last_seen_at  TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (id, exchange)
		)`)
	require.NoError(t, err)
	_, err = pg.db.Exec(ctx, `
		INSERT INTO markets (id, exchange, base, quote, is_trading, first_seen_at, last_seen_at)
		VALUES ('ETHUSD', 'alpha', 'ETH', 'USD', TRUE, now(), now())`)
	require.NoError(t, err)

	require.NoError(t, pg.Migrate(ctx))
	require.NoError(t, pg.Migrate(ctx), "migrate must be repeatable")

	got, err := pg.FindOne(ctx, "ETHUSD", "alpha")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsTrading)
	assert.Empty(t, got.Status)
	assert.True(t, got.TickSize.IsZero())
	assert.Empty(t, got.Metadata)
}

func TestPostgres_UpsertWithoutMetadata(t *testing.T) {
	pg := requirePostgres(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	stored, err := pg.Upsert(ctx, model.MarketRecord{
		ID: "XRPUSD", Exchange: "alpha", FirstSeenAt: now, LastSeenAt: now,
	})
	require.NoError(t, err)
	assert.True(t, stored.TickSize.IsZero())
	assert.True(t, stored.LastSeenAt.Equal(now))
	assert.Equal(t, map[string]string{}, stored.Metadata)
}

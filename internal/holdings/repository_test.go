package holdings

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/database"
)

func TestParseNullDecimal(t *testing.T) {
	d, err := parseNullDecimal(nil)
	require.NoError(t, err)
	assert.False(t, d.Valid)

	s := "12.3400"
	d, err = parseNullDecimal(&s)
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.Equal(t, "12.34", d.Decimal.String())

	bad := "abc"
	_, err = parseNullDecimal(&bad)
	assert.Error(t, err)
}

func TestSchema_Idempotent(t *testing.T) {
	for _, stmt := range Schema {
		assert.Contains(t, stmt, "IF NOT EXISTS")
	}
}

// newTestRepository connects to DATABASE_URL and seeds a disposable portfolio
func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx, Schema...))

	id := "test-" + time.Now().Format("20060102150405.000000")
	_, err = db.Pool.Exec(ctx, `INSERT INTO folio.portfolios (id, base_currency, cash) VALUES ($1, 'USD', 500)`, id)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO folio.positions (portfolio_id, ticker, shares, avg_cost, current_price, currency)
		VALUES ($1, 'zzta', 10, 100, 120, 'USD'), ($1, 'zztb', 5, 50, NULL, 'USD')
	`, id)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO folio.scores (ticker, score, cash_runway_months, stage)
		VALUES ('zzta', 8.5, 24, 2)
		ON CONFLICT (ticker) DO UPDATE SET score = EXCLUDED.score
	`)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM folio.portfolios WHERE id = $1`, id)
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM folio.scores WHERE ticker = 'zzta'`)
	})

	return NewRepository(db.Pool), id
}

func TestRepository_LoadSnapshot(t *testing.T) {
	repo, id := newTestRepository(t)
	ctx := context.Background()

	snap, err := repo.LoadSnapshot(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "USD", snap.BaseCurrency)
	assert.Equal(t, "500", snap.Cash.String())
	require.Len(t, snap.Positions, 2)
	assert.Equal(t, "ZZTA", snap.Positions[0].Ticker)
	assert.Equal(t, "1200", snap.Positions[0].MarketValue.String())
	assert.False(t, snap.Positions[1].CurrentPrice.Valid)

	rec, ok := snap.Scores["ZZTA"]
	require.True(t, ok)
	require.NotNil(t, rec.Score)
	assert.InDelta(t, 8.5, *rec.Score, 1e-9)
	require.NotNil(t, rec.Stage)
	assert.Equal(t, 2, *rec.Stage)
	assert.False(t, rec.TrendSupport.Valid)
}

func TestRepository_LoadSnapshot_NotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.LoadSnapshot(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRepository_SaveAndLatestPlan(t *testing.T) {
	repo, id := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.LatestPlan(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repo.SavePlan(ctx, sampleResult(id)))

	got, err := repo.LatestPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.PortfolioID)
	assert.Equal(t, 1, got.Plan.Count())

	ids, err := repo.ListPortfolios(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
}

func TestRepository_SavePlan_Empty(t *testing.T) {
	repo := NewRepository(nil)
	assert.Error(t, repo.SavePlan(context.Background(), nil))
}

func TestRepository_PrunePlans_KeepsLatest(t *testing.T) {
	repo, id := newTestRepository(t)
	ctx := context.Background()

	old := sampleResult(id)
	old.GeneratedAt = time.Now().Add(-72 * time.Hour)
	require.NoError(t, repo.SavePlan(ctx, old))

	_, err := repo.PrunePlans(ctx, time.Now())
	require.NoError(t, err)

	// 유일한 플랜은 오래됐어도 남아 있어야 함
	got, err := repo.LatestPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.PortfolioID)
}

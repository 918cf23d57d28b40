package holdings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/folio/internal/contracts"
)

// ErrNotFound is returned for an unknown portfolio or missing plan
var ErrNotFound = errors.New("holdings: not found")

// Repository loads engine inputs and archives computed plans
// ⭐ SSOT: 보유/점수/환율 조회와 플랜 저장은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new holdings repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPortfolios returns all portfolio IDs in stable order
func (r *Repository) ListPortfolios(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM folio.portfolios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan portfolios: %w", err)
	}
	return ids, nil
}

// LoadSnapshot assembles one portfolio's positions, scores, FX rates and cash.
// 수치 컬럼은 ::text로 읽어 decimal로 손실 없이 파싱
func (r *Repository) LoadSnapshot(ctx context.Context, portfolioID string) (*contracts.Snapshot, error) {
	snap := &contracts.Snapshot{PortfolioID: portfolioID}

	var cash, aum string
	err := r.pool.QueryRow(ctx, `
		SELECT base_currency, cash::text, COALESCE(total_aum, 0)::text
		FROM folio.portfolios
		WHERE id = $1
	`, portfolioID).Scan(&snap.BaseCurrency, &cash, &aum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("portfolio %s: %w", portfolioID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	if snap.Cash, err = decimal.NewFromString(cash); err != nil {
		return nil, fmt.Errorf("invalid cash: %w", err)
	}
	if snap.TotalAUM, err = decimal.NewFromString(aum); err != nil {
		return nil, fmt.Errorf("invalid total_aum: %w", err)
	}

	if snap.Positions, err = r.loadPositions(ctx, portfolioID); err != nil {
		return nil, err
	}
	if snap.Scores, err = r.loadScores(ctx, portfolioID); err != nil {
		return nil, err
	}
	if snap.FXRates, err = r.loadFXRates(ctx); err != nil {
		return nil, err
	}

	snap.Normalize()
	return snap, nil
}

func (r *Repository) loadPositions(ctx context.Context, portfolioID string) ([]contracts.Position, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, shares::text, avg_cost::text, current_price::text, currency
		FROM folio.positions
		WHERE portfolio_id = $1
		ORDER BY ticker
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]contracts.Position, 0)
	for rows.Next() {
		var (
			p            contracts.Position
			shares, cost string
			price        *string
		)
		if err := rows.Scan(&p.Ticker, &shares, &cost, &price, &p.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		if p.Shares, err = decimal.NewFromString(shares); err != nil {
			return nil, fmt.Errorf("position %s shares: %w", p.Ticker, err)
		}
		if p.AvgCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("position %s avg_cost: %w", p.Ticker, err)
		}
		if p.CurrentPrice, err = parseNullDecimal(price); err != nil {
			return nil, fmt.Errorf("position %s current_price: %w", p.Ticker, err)
		}
		p.Revalue()
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}
	return positions, nil
}

func (r *Repository) loadScores(ctx context.Context, portfolioID string) (map[string]contracts.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.ticker, s.score, s.trend_support_price::text, s.trend_resistance_price::text,
		       s.cash_runway_months, s.stage, s.thesis
		FROM folio.scores s
		JOIN folio.positions p ON p.ticker = s.ticker
		WHERE p.portfolio_id = $1
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]contracts.ScoreRecord)
	for rows.Next() {
		var (
			rec                 contracts.ScoreRecord
			support, resistance *string
		)
		if err := rows.Scan(&rec.Ticker, &rec.Score, &support, &resistance,
			&rec.CashRunwayMonths, &rec.Stage, &rec.Thesis); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if rec.TrendSupport, err = parseNullDecimal(support); err != nil {
			return nil, fmt.Errorf("score %s support: %w", rec.Ticker, err)
		}
		if rec.TrendResistance, err = parseNullDecimal(resistance); err != nil {
			return nil, fmt.Errorf("score %s resistance: %w", rec.Ticker, err)
		}
		scores[rec.Ticker] = rec
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}
	return scores, nil
}

func (r *Repository) loadFXRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT currency, rate::text FROM folio.fx_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fx rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]decimal.Decimal)
	for rows.Next() {
		var ccy, rate string
		if err := rows.Scan(&ccy, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan fx rate: %w", err)
		}
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("fx rate %s: %w", ccy, err)
		}
		rates[ccy] = d
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fx rates: %w", err)
	}
	return rates, nil
}

// SavePlan archives a computed result; the full result is kept as JSONB
func (r *Repository) SavePlan(ctx context.Context, result *contracts.Result) error {
	if result == nil || result.Plan == nil {
		return fmt.Errorf("save plan: empty result")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO folio.plans (
			portfolio_id, policy_hash, generated_at, total_contribution, risk_score, payload
		) VALUES ($1, $2, $3, $4::numeric, $5, $6)
	`,
		result.PortfolioID,
		result.PolicyHash,
		result.GeneratedAt,
		result.Plan.TotalContribution().String(),
		result.Risk.RiskScore,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// LatestPlan returns the most recently archived result of a portfolio
func (r *Repository) LatestPlan(ctx context.Context, portfolioID string) (*contracts.Result, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload
		FROM folio.plans
		WHERE portfolio_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`, portfolioID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("plan for %s: %w", portfolioID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var result contracts.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &result, nil
}

func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// PrunePlans deletes archived plans generated before the cutoff.
// 포트폴리오별 최신 플랜 1건은 항상 보존
func (r *Repository) PrunePlans(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM folio.plans p
		WHERE p.generated_at < $1
		  AND p.id <> (
			SELECT id FROM folio.plans l
			WHERE l.portfolio_id = p.portfolio_id
			ORDER BY l.generated_at DESC, l.id DESC
			LIMIT 1
		  )
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune plans: %w", err)
	}
	return tag.RowsAffected(), nil
}

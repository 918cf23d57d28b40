package holdings

// Schema is the DDL of the holdings store, applied by database.Migrate.
// 점수/환율은 외부 수집기가 채우고 엔진은 읽기만 함
var Schema = []string{
	`CREATE SCHEMA IF NOT EXISTS folio`,
	`CREATE TABLE IF NOT EXISTS folio.portfolios (
		id            TEXT PRIMARY KEY,
		base_currency CHAR(3)        NOT NULL DEFAULT 'USD',
		cash          NUMERIC(20, 4) NOT NULL DEFAULT 0,
		total_aum     NUMERIC(20, 4),
		updated_at    TIMESTAMPTZ    NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS folio.positions (
		portfolio_id  TEXT           NOT NULL REFERENCES folio.portfolios(id) ON DELETE CASCADE,
		ticker        TEXT           NOT NULL,
		shares        NUMERIC(20, 8) NOT NULL CHECK (shares > 0),
		avg_cost      NUMERIC(20, 4) NOT NULL CHECK (avg_cost >= 0),
		current_price NUMERIC(20, 4),
		currency      CHAR(3)        NOT NULL DEFAULT 'USD',
		PRIMARY KEY (portfolio_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS folio.scores (
		ticker                 TEXT PRIMARY KEY,
		score                  DOUBLE PRECISION,
		trend_support_price    NUMERIC(20, 4),
		trend_resistance_price NUMERIC(20, 4),
		cash_runway_months     INTEGER,
		stage                  INTEGER,
		thesis                 TEXT NOT NULL DEFAULT '',
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS folio.fx_rates (
		currency   CHAR(3) PRIMARY KEY,
		rate       NUMERIC(20, 10) NOT NULL CHECK (rate > 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS folio.plans (
		id                 BIGSERIAL PRIMARY KEY,
		portfolio_id       TEXT           NOT NULL REFERENCES folio.portfolios(id) ON DELETE CASCADE,
		policy_hash        TEXT           NOT NULL,
		generated_at       TIMESTAMPTZ    NOT NULL,
		total_contribution NUMERIC(20, 4) NOT NULL,
		risk_score         INTEGER        NOT NULL,
		payload            JSONB          NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_portfolio_generated
		ON folio.plans (portfolio_id, generated_at DESC)`,
}

// File: internal/dataset/postgres.go
package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgxConn is the slice of the pgx pool the sink needs. Tests substitute a
// pgxmock pool.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS site_signals (
	id                      BIGSERIAL PRIMARY KEY,
	url                     TEXT NOT NULL,
	collected_at            TIMESTAMPTZ NOT NULL,
	popup_count             INTEGER,
	has_guest_checkout      INTEGER,
	click_depth_to_checkout INTEGER,
	cart_persistence        INTEGER,
	has_search_autosuggest  INTEGER,
	has_quick_buy           INTEGER,
	broken_link_count       INTEGER,
	is_mobile_responsive    INTEGER,
	lcp_ms                  DOUBLE PRECISION,
	cls                     DOUBLE PRECISION,
	tbt_ms                  DOUBLE PRECISION,
	ttfb_ms                 DOUBLE PRECISION,
	performance_score       DOUBLE PRECISION,
	has_phone               INTEGER,
	has_email               INTEGER,
	has_address             INTEGER,
	has_return_policy       INTEGER,
	has_privacy_policy      INTEGER,
	has_tos                 INTEGER,
	has_social_links        INTEGER,
	has_payment_badges      INTEGER,
	trust_score             INTEGER,
	visual_clutter_score    INTEGER,
	visual_modern_score     INTEGER,
	visual_image_quality    INTEGER,
	visual_overall          INTEGER,
	label                   TEXT
);`

const insertRowSQL = `
INSERT INTO site_signals (
	url, collected_at,
	popup_count, has_guest_checkout, click_depth_to_checkout, cart_persistence,
	has_search_autosuggest, has_quick_buy, broken_link_count, is_mobile_responsive,
	lcp_ms, cls, tbt_ms, ttfb_ms, performance_score,
	has_phone, has_email, has_address,
	has_return_policy, has_privacy_policy, has_tos,
	has_social_links, has_payment_badges, trust_score,
	visual_clutter_score, visual_modern_score, visual_image_quality, visual_overall,
	label
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
	$21, $22, $23, $24, $25, $26, $27, $28, $29
);`

// PostgresSink mirrors every collected row into Postgres for querying across
// runs. The CSV stays the canonical dataset; this is the warehouse copy.
type PostgresSink struct {
	db     PgxConn
	logger *zap.Logger
}

// NewPostgresSink connects a pool and ensures the table exists.
func NewPostgresSink(ctx context.Context, connString string, logger *zap.Logger) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	sink := NewPostgresSinkWithConn(pool, logger)
	if err := sink.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

// NewPostgresSinkWithConn wraps an existing connection. The caller owns
// schema setup. Used by tests with a mock pool.
func NewPostgresSinkWithConn(db PgxConn, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{db: db, logger: logger.Named("postgres")}
}

func (s *PostgresSink) ensureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Append inserts one row. Failed rows insert NULL signal columns, matching
// the blank cells the CSV sink writes.
func (s *PostgresSink) Append(ctx context.Context, row Row) error {
	args := s.insertArgs(row)
	if _, err := s.db.Exec(ctx, insertRowSQL, args...); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	return nil
}

func (s *PostgresSink) insertArgs(row Row) []any {
	if row.Failed {
		args := make([]any, 29)
		args[0] = row.URL
		args[1] = row.CollectedAt.UTC()
		return args
	}
	return []any{
		row.URL, row.CollectedAt.UTC(),
		row.Behavioral.PopupCount, row.Behavioral.HasGuestCheckout,
		row.Behavioral.ClickDepthToCheckout, row.Behavioral.CartPersistence,
		row.Behavioral.HasSearchAutosuggest, row.Behavioral.HasQuickBuy,
		row.Behavioral.BrokenLinkCount, row.Behavioral.IsMobileResponsive,
		row.Performance.LCPMs, row.Performance.CLS, row.Performance.TBTMs,
		row.Performance.TTFBMs, row.Performance.Score,
		row.Trust.HasPhone, row.Trust.HasEmail, row.Trust.HasAddress,
		row.Trust.HasReturnPolicy, row.Trust.HasPrivacyPolicy, row.Trust.HasTOS,
		row.Trust.HasSocialLinks, row.Trust.HasPaymentBadges, row.Trust.TrustScore,
		row.Visual.ClutterScore, row.Visual.ModernScore,
		row.Visual.ImageQuality, row.Visual.Overall,
		row.Label,
	}
}

// Close releases the pool.
func (s *PostgresSink) Close() error {
	s.db.Close()
	return nil
}
